package adapters

import (
	"github.com/de-tools/sec-atlas/pkg/models/api"
	"github.com/de-tools/sec-atlas/pkg/models/domain"
)

func MapMFAResultDomainToApi(r domain.MFAResult) api.MFACheckResult {
	users := make([]api.MFAUser, 0, len(r.Users))
	for _, u := range r.Users {
		users = append(users, api.MFAUser{
			ID:         u.ID,
			Email:      u.Email,
			Phone:      u.Phone,
			MFAEnabled: u.MFAEnabled,
		})
	}
	return api.MFACheckResult{
		CheckName:     domain.CheckNameMFA,
		OverallStatus: string(r.Status),
		Details: api.MFADetails{
			Message: r.Message,
			Users:   users,
		},
		Error: r.Error,
	}
}

func MapTableRLSDomainToApi(t domain.TableRLS) api.TableRLSStatus {
	policies := make([]api.TablePolicy, 0, len(t.Policies))
	for _, p := range t.Policies {
		policies = append(policies, api.TablePolicy{
			Name:      p.Name,
			Command:   p.Command,
			Roles:     p.Roles,
			UsingExpr: p.Using,
			CheckExpr: p.WithCheck,
		})
	}
	var hint *string
	if t.Hint != "" {
		h := t.Hint
		hint = &h
	}
	return api.TableRLSStatus{
		TableName:             t.Table,
		Enabled:               t.Enabled,
		PolicyCountsByCommand: t.PolicyCounts,
		CurrentPolicies:       policies,
		RemediationHint:       hint,
	}
}

func MapRLSResultDomainToApi(r domain.RLSResult) api.RLSCheckResult {
	tables := make([]api.TableRLSStatus, 0, len(r.Tables))
	for _, t := range r.Tables {
		tables = append(tables, MapTableRLSDomainToApi(t))
	}
	return api.RLSCheckResult{
		CheckName:     domain.CheckNameRLS,
		OverallStatus: string(r.Status),
		Details: api.RLSDetails{
			Message: r.Message,
			Tables:  tables,
		},
		Error: r.Error,
	}
}

func MapPITRResultDomainToApi(r domain.PITRResult) api.PITRCheckResult {
	projects := make([]api.ProjectPITRStatus, 0, len(r.Projects))
	for _, p := range r.Projects {
		projects = append(projects, api.ProjectPITRStatus{
			ProjectName:     p.Name,
			ProjectRef:      p.Ref,
			RecoveryEnabled: p.Enabled,
			AddonStatus:     p.AddonStatus,
			AddonMetadata:   p.AddonMetadata,
		})
	}
	return api.PITRCheckResult{
		CheckName:     domain.CheckNamePITR,
		OverallStatus: string(r.Status),
		Details: api.PITRDetails{
			Message:  r.Message,
			Projects: projects,
		},
		Error: r.Error,
	}
}

func MapReportDomainToApi(r domain.Report) api.ComplianceReport {
	summary := r.Summary()
	return api.ComplianceReport{
		MFA:  MapMFAResultDomainToApi(r.MFA),
		RLS:  MapRLSResultDomainToApi(r.RLS),
		PITR: MapPITRResultDomainToApi(r.PITR),
		Summary: api.ReportSummary{
			Passing: summary.Passing,
			Failing: summary.Failing,
			Total:   summary.Total,
		},
	}
}
