package store

// Project is one hosted project visible to the management credential.
type Project struct {
	ID     string `json:"id"`
	Ref    string `json:"ref"`
	Name   string `json:"name"`
	Region string `json:"region"`
	Status string `json:"status"`
}

// Addon is an optionally-enabled project feature. Type is matched
// case-insensitively against "pitr" to detect recovery.
type Addon struct {
	Type    string         `json:"type"`
	Variant string         `json:"variant"`
	Name    string         `json:"name"`
	Meta    map[string]any `json:"meta"`
}
