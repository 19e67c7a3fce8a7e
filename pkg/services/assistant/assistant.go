package assistant

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
)

// systemInstruction is fixed: the bridge does not interpret or validate the
// model's output.
const systemInstruction = "You are a database security compliance assistant. " +
	"Answer using the provided compliance context, be concise and actionable, " +
	"and use SQL code blocks when relevant."

// Bridge forwards a free-text question plus a JSON context blob to a hosted
// language model and returns the answer verbatim.
type Bridge interface {
	Ask(ctx context.Context, question string, contextBlob json.RawMessage) (domain.AssistantAnswer, error)
}

type Config struct {
	BaseURL string
	Model   string
	APIKey  string
}

type bridge struct {
	cfg        Config
	httpClient *http.Client
}

func NewBridge(cfg Config) Bridge {
	return &bridge{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (b *bridge) Ask(ctx context.Context, question string, contextBlob json.RawMessage) (domain.AssistantAnswer, error) {
	if question == "" {
		return domain.AssistantAnswer{}, &domain.InvalidInputError{Message: "question is required"}
	}

	prompt := question
	if len(contextBlob) > 0 {
		prompt = fmt.Sprintf("Compliance context:\n%s\n\nQuestion: %s", string(contextBlob), question)
	}

	payload := chatRequest{
		Model: b.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: prompt},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return domain.AssistantAnswer{}, fmt.Errorf("encode chat request: %w", err)
	}

	endpoint := strings.TrimSuffix(b.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return domain.AssistantAnswer{}, fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.cfg.APIKey)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return domain.AssistantAnswer{}, fmt.Errorf("assistant call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.AssistantAnswer{}, fmt.Errorf("read assistant response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.AssistantAnswer{}, &domain.UpstreamError{
			Surface: "assistant API",
			Status:  resp.StatusCode,
			Body:    strings.TrimSpace(string(body)),
		}
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return domain.AssistantAnswer{}, fmt.Errorf("decode assistant response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return domain.AssistantAnswer{}, fmt.Errorf("assistant returned no choices")
	}

	return domain.AssistantAnswer{
		Answer:    chat.Choices[0].Message.Content,
		Timestamp: time.Now().UTC(),
	}, nil
}
