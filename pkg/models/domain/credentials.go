package domain

import "strings"

// Credentials identify one hosted project for the duration of a single call.
// They are never persisted, cached across requests, or written to logs.
type Credentials struct {
	ProjectURL string
	ServiceKey string
	// DBURL is the direct Postgres connection string, required only for
	// RLS checks and fixes.
	DBURL string
}

// Validate checks the shape of the credentials without any network I/O.
func (c Credentials) Validate() error {
	if c.ProjectURL == "" {
		return &InvalidInputError{Message: "projectUrl is required"}
	}
	if c.ServiceKey == "" {
		return &InvalidInputError{Message: "serviceKey is required"}
	}
	if !strings.HasPrefix(c.ProjectURL, "http://") && !strings.HasPrefix(c.ProjectURL, "https://") {
		return &InvalidInputError{Message: "projectUrl must start with http:// or https://"}
	}
	return nil
}

// Ref derives the project ref from the project URL: scheme stripped, first
// dot-delimited host label. "https://abcd1234.supabase.co" -> "abcd1234".
func (c Credentials) Ref() string {
	return ProjectRef(c.ProjectURL)
}

// ProjectRef extracts the project ref from an endpoint URL. Several
// management calls key on this ref rather than the full URL.
func ProjectRef(projectURL string) string {
	host := projectURL
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexAny(host, "/:"); i >= 0 {
		host = host[:i]
	}
	if i := strings.Index(host, "."); i >= 0 {
		host = host[:i]
	}
	return host
}
