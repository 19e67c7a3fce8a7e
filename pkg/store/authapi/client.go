package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/de-tools/sec-atlas/pkg/models/domain"
	"github.com/de-tools/sec-atlas/pkg/models/store"
)

// Client talks to a project's auth admin surface. It holds no credentials of
// its own: the caller supplies them per call and they are never retained.
type Client interface {
	ListUsers(ctx context.Context, creds domain.Credentials) ([]store.AuthUser, error)
	SendRecovery(ctx context.Context, creds domain.Credentials, email, redirectTo string) error
}

type client struct {
	httpClient *http.Client
}

func NewClient() Client {
	return &client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type listUsersResponse struct {
	Users []store.AuthUser `json:"users"`
}

// usersPageSize is the admin listing page size. ListUsers must walk every
// page: a truncated listing would let unenrolled users slip past the check.
const usersPageSize = 1000

func (c *client) ListUsers(ctx context.Context, creds domain.Credentials) ([]store.AuthUser, error) {
	base := strings.TrimSuffix(creds.ProjectURL, "/") + "/auth/v1/admin/users"

	var users []store.AuthUser
	for page := 1; ; page++ {
		endpoint := fmt.Sprintf("%s?page=%d&per_page=%d", base, page, usersPageSize)
		body, err := c.do(ctx, creds, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		var resp listUsersResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("decode user listing: %w", err)
		}
		users = append(users, resp.Users...)
		if len(resp.Users) < usersPageSize {
			return users, nil
		}
	}
}

func (c *client) SendRecovery(ctx context.Context, creds domain.Credentials, email, redirectTo string) error {
	endpoint := strings.TrimSuffix(creds.ProjectURL, "/") + "/auth/v1/recover"
	if redirectTo != "" {
		endpoint += "?redirect_to=" + url.QueryEscape(redirectTo)
	}

	payload := map[string]string{"email": email}
	_, err := c.do(ctx, creds, http.MethodPost, endpoint, payload)
	return err
}

// do issues one authenticated call. A non-success status is translated into
// a domain.UpstreamError carrying the upstream status and body; no retries.
func (c *client) do(ctx context.Context, creds domain.Credentials, method, endpoint string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.ServiceKey)
	req.Header.Set("apikey", creds.ServiceKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth API call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read auth API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.UpstreamError{
			Surface: "auth API",
			Status:  resp.StatusCode,
			Body:    strings.TrimSpace(string(body)),
		}
	}
	return body, nil
}
