package api

import "encoding/json"

type CheckRequest struct {
	ProjectURL string `json:"projectUrl"`
	ServiceKey string `json:"serviceKey"`
	DBURL      string `json:"dbUrl,omitempty"`
}

type RLSFixRequest struct {
	ProjectURL string `json:"projectUrl"`
	ServiceKey string `json:"serviceKey"`
	DBURL      string `json:"dbUrl"`
	Table      string `json:"table"`
}

type MFAFixRequest struct {
	ProjectURL string `json:"projectUrl"`
	ServiceKey string `json:"serviceKey"`
	UserID     string `json:"userId"`
}

type PITRFixRequest struct {
	ProjectURL string `json:"projectUrl"`
	ServiceKey string `json:"serviceKey"`
	ProjectRef string `json:"projectRef"`
}

type AssistantRequest struct {
	ProjectURL string          `json:"projectUrl"`
	ServiceKey string          `json:"serviceKey"`
	Question   string          `json:"question"`
	Context    json.RawMessage `json:"context,omitempty"`
}
