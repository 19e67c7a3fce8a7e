package api

import "time"

type MFAUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	MFAEnabled bool   `json:"mfa_enabled"`
}

type MFADetails struct {
	Message string    `json:"message,omitempty"`
	Users   []MFAUser `json:"users"`
}

type MFACheckResult struct {
	CheckName     string     `json:"checkName"`
	OverallStatus string     `json:"overallStatus"`
	Details       MFADetails `json:"details"`
	Error         string     `json:"error,omitempty"`
}

type TablePolicy struct {
	Name      string   `json:"name"`
	Command   string   `json:"command"`
	Roles     []string `json:"roles"`
	UsingExpr string   `json:"usingExpr,omitempty"`
	CheckExpr string   `json:"checkExpr,omitempty"`
}

type TableRLSStatus struct {
	TableName             string         `json:"tableName"`
	Enabled               bool           `json:"enabled"`
	PolicyCountsByCommand map[string]int `json:"policyCountsByCommand"`
	CurrentPolicies       []TablePolicy  `json:"currentPolicies"`
	RemediationHint       *string        `json:"remediationHint"`
}

type RLSDetails struct {
	Message string           `json:"message,omitempty"`
	Tables  []TableRLSStatus `json:"tables"`
}

type RLSCheckResult struct {
	CheckName     string     `json:"checkName"`
	OverallStatus string     `json:"overallStatus"`
	Details       RLSDetails `json:"details"`
	Error         string     `json:"error,omitempty"`
}

type ProjectPITRStatus struct {
	ProjectName     string         `json:"projectName"`
	ProjectRef      string         `json:"projectRef"`
	RecoveryEnabled bool           `json:"recoveryEnabled"`
	AddonStatus     string         `json:"addonStatus"`
	AddonMetadata   map[string]any `json:"addonMetadata,omitempty"`
}

type PITRDetails struct {
	Message  string              `json:"message,omitempty"`
	Projects []ProjectPITRStatus `json:"projects"`
}

type PITRCheckResult struct {
	CheckName     string      `json:"checkName"`
	OverallStatus string      `json:"overallStatus"`
	Details       PITRDetails `json:"details"`
	Error         string      `json:"error,omitempty"`
}

type ReportSummary struct {
	Passing int `json:"passing"`
	Failing int `json:"failing"`
	Total   int `json:"total"`
}

type ComplianceReport struct {
	MFA     MFACheckResult  `json:"mfa"`
	RLS     RLSCheckResult  `json:"rls"`
	PITR    PITRCheckResult `json:"pitr"`
	Summary ReportSummary   `json:"summary"`
}

type RLSFixResponse struct {
	Message string `json:"message"`
	Table   string `json:"table"`
}

type MFAFixResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
	Email   string `json:"email"`
}

type PITRFixResponse struct {
	Message    string `json:"message"`
	ProjectRef string `json:"projectRef"`
}

type AssistantResponse struct {
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
