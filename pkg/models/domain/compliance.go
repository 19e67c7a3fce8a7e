package domain

import "time"

type CheckStatus string

const (
	StatusPassing       CheckStatus = "PASSING"
	StatusFailing       CheckStatus = "FAILING"
	StatusNotApplicable CheckStatus = "N/A"
	StatusError         CheckStatus = "ERROR"
	StatusManualCheck   CheckStatus = "MANUAL_CHECK_REQUIRED"
)

const (
	CheckNameMFA  = "Multi-Factor Authentication (MFA)"
	CheckNameRLS  = "Row Level Security (RLS)"
	CheckNamePITR = "Point in Time Recovery (PITR)"
)

// UserMFA is one user's second-factor enrollment state. A user counts as
// enrolled iff at least one of their factors is verified.
type UserMFA struct {
	ID         string
	Email      string
	Phone      string
	MFAEnabled bool
}

type MFAResult struct {
	Status  CheckStatus
	Message string
	Users   []UserMFA
	Error   string
}

// Policy is one row-level security policy as reported by the data store.
type Policy struct {
	Name      string
	Command   string
	Roles     []string
	Using     string
	WithCheck string
}

// TableRLS is the per-table access-control state. PolicyCounts only ever
// holds the four recognized command buckets.
type TableRLS struct {
	Schema       string
	Table        string
	Enabled      bool
	PolicyCounts map[string]int
	Policies     []Policy
	// Hint is a remediation suggestion, set only when RLS is disabled.
	Hint string
}

type RLSResult struct {
	Status  CheckStatus
	Message string
	Tables  []TableRLS
	Error   string
}

// ProjectPITR is one hosted project's point-in-time-recovery state.
type ProjectPITR struct {
	Name          string
	Ref           string
	Enabled       bool
	AddonStatus   string
	AddonMetadata map[string]any
}

type PITRResult struct {
	Status   CheckStatus
	Message  string
	Projects []ProjectPITR
	Error    string
}

// Report is the aggregate of the three checks. It lives for one
// request/response cycle and is never persisted.
type Report struct {
	MFA  MFAResult
	RLS  RLSResult
	PITR PITRResult
}

// Summary counts the report's check statuses; derived, used by the CLI
// renderer and as assistant context.
type Summary struct {
	Passing int
	Failing int
	Total   int
}

func (r Report) Summary() Summary {
	s := Summary{Total: 3}
	for _, st := range []CheckStatus{r.MFA.Status, r.RLS.Status, r.PITR.Status} {
		switch st {
		case StatusPassing:
			s.Passing++
		case StatusFailing:
			s.Failing++
		}
	}
	return s
}

// RLSFix, MFAFix and PITRFix carry the confirmation of a remediation call
// plus the minimal fields the caller needs to correlate with its report.
type RLSFix struct {
	Message string
	Table   string
}

type MFAFix struct {
	Message string
	UserID  string
	Email   string
}

type PITRFix struct {
	Message    string
	ProjectRef string
}

// AssistantAnswer is the hosted model's reply, returned verbatim.
type AssistantAnswer struct {
	Answer    string
	Timestamp time.Time
}
