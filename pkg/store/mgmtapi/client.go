package mgmtapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/de-tools/sec-atlas/pkg/models/domain"
	"github.com/de-tools/sec-atlas/pkg/models/store"
)

const DefaultBaseURL = "https://api.supabase.com"

// DefaultPITRVariant is the addon variant submitted when enabling recovery:
// a 7 day retention window.
const DefaultPITRVariant = "pitr_7"

// Client talks to the hosted management surface using a server-side access
// token configured at process start.
type Client interface {
	ListProjects(ctx context.Context) ([]store.Project, error)
	ListAddons(ctx context.Context, projectRef string) ([]store.Addon, error)
	EnablePITR(ctx context.Context, projectRef, variant string) error
}

type client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *client) ListProjects(ctx context.Context) ([]store.Project, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/projects", nil)
	if err != nil {
		return nil, err
	}

	var projects []store.Project
	if err := json.Unmarshal(body, &projects); err != nil {
		return nil, fmt.Errorf("decode project listing: %w", err)
	}
	return projects, nil
}

type addonsResponse struct {
	SelectedAddons []store.Addon `json:"selected_addons"`
}

func (c *client) ListAddons(ctx context.Context, projectRef string) ([]store.Addon, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/projects/"+projectRef+"/addons", nil)
	if err != nil {
		return nil, err
	}

	var resp addonsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode addon listing: %w", err)
	}
	return resp.SelectedAddons, nil
}

func (c *client) EnablePITR(ctx context.Context, projectRef, variant string) error {
	if variant == "" {
		variant = DefaultPITRVariant
	}
	payload := map[string]string{
		"addon_type":    "pitr",
		"addon_variant": variant,
	}
	_, err := c.do(ctx, http.MethodPost, "/v1/projects/"+projectRef+"/addons", payload)
	return err
}

func (c *client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("management API call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read management API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.UpstreamError{
			Surface: "management API",
			Status:  resp.StatusCode,
			Body:    strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}
