package compliance

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/de-tools/sec-atlas/pkg/models/domain"
	"github.com/de-tools/sec-atlas/pkg/store/audit"
	"github.com/de-tools/sec-atlas/pkg/store/authapi"
	"github.com/de-tools/sec-atlas/pkg/store/mgmtapi"
	"github.com/de-tools/sec-atlas/pkg/store/pg"
)

// StoreOpener opens a short-lived data-store connection for one check or fix
// call. Swapped out in tests.
type StoreOpener func(ctx context.Context, dsn string) (pg.Store, error)

// Service runs the three compliance checks and the three remediation
// operations against one project at a time. It holds no per-request state:
// credentials pass through each call and are never retained.
type Service interface {
	RunChecks(ctx context.Context, creds domain.Credentials) (domain.Report, error)
	FixRLS(ctx context.Context, creds domain.Credentials, table string) (domain.RLSFix, error)
	FixMFA(ctx context.Context, creds domain.Credentials, userID string) (domain.MFAFix, error)
	FixPITR(ctx context.Context, creds domain.Credentials, projectRef string) (domain.PITRFix, error)
}

type Dependencies struct {
	Auth authapi.Client
	Mgmt mgmtapi.Client
	// ManagementConfigured reports whether the server-side management token
	// is present. When false the PITR check reports MANUAL_CHECK_REQUIRED
	// and the PITR fix refuses to run.
	ManagementConfigured bool
	OpenStore            StoreOpener
	Audit                audit.Recorder
}

type service struct {
	auth           authapi.Client
	mgmt           mgmtapi.Client
	mgmtConfigured bool
	openStore      StoreOpener
	audit          audit.Recorder
}

func NewService(deps Dependencies) Service {
	openStore := deps.OpenStore
	if openStore == nil {
		openStore = pg.Open
	}
	recorder := deps.Audit
	if recorder == nil {
		recorder = audit.NewNopRecorder()
	}
	return &service{
		auth:           deps.Auth,
		mgmt:           deps.Mgmt,
		mgmtConfigured: deps.ManagementConfigured,
		openStore:      openStore,
		audit:          recorder,
	}
}

// RunChecks runs the three checks concurrently and waits for all of them to
// settle. A failure inside one check is captured on that check's result and
// never aborts the other two.
func (s *service) RunChecks(ctx context.Context, creds domain.Credentials) (domain.Report, error) {
	if err := creds.Validate(); err != nil {
		return domain.Report{}, err
	}

	var report domain.Report
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		defer recoverMFA(&report.MFA)
		report.MFA = s.checkMFA(ctx, creds)
	}()
	go func() {
		defer wg.Done()
		defer recoverRLS(&report.RLS)
		report.RLS = s.checkRLS(ctx, creds)
	}()
	go func() {
		defer wg.Done()
		defer recoverPITR(&report.PITR)
		report.PITR = s.checkPITR(ctx)
	}()

	wg.Wait()

	s.audit.Record(zerolog.InfoLevel, "compliance_check", map[string]any{
		"project_ref": creds.Ref(),
		"mfa_status":  string(report.MFA.Status),
		"rls_status":  string(report.RLS.Status),
		"pitr_status": string(report.PITR.Status),
	})

	return report, nil
}

func recoverMFA(result *domain.MFAResult) {
	if r := recover(); r != nil {
		*result = domain.MFAResult{
			Status: domain.StatusError,
			Error:  fmt.Sprintf("mfa check panicked: %v", r),
		}
	}
}

func recoverRLS(result *domain.RLSResult) {
	if r := recover(); r != nil {
		*result = domain.RLSResult{
			Status: domain.StatusError,
			Error:  fmt.Sprintf("rls check panicked: %v", r),
		}
	}
}

func recoverPITR(result *domain.PITRResult) {
	if r := recover(); r != nil {
		*result = domain.PITRResult{
			Status: domain.StatusError,
			Error:  fmt.Sprintf("pitr check panicked: %v", r),
		}
	}
}
