package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"NoticeBot/internal/config"
	"NoticeBot/internal/ports"
)

// ServiceClient talks to a self-hosted summarization service.
type ServiceClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Summarizer = (*ServiceClient)(nil)

// NewServiceClient creates a reusable HTTP client.
func NewServiceClient(cfg config.ServiceConfig) *ServiceClient {
	return &ServiceClient{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

type serviceRequest struct {
	Prompt  string `json:"prompt"`
	Content string `json:"content"`
}

type serviceResponse struct {
	Summary string `json:"summary"`
}

// Summarize posts the notice body to {endpoint}/summarize.
func (c *ServiceClient) Summarize(ctx context.Context, text string) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("summary service endpoint is empty")
	}

	var resp serviceResponse
	if err := c.post(ctx, "/summarize", serviceRequest{Prompt: BuildPrompt(text), Content: text}, &resp); err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Summary)
	if summary == "" {
		return "", fmt.Errorf("summary service returned no text")
	}
	return summary, nil
}

func (c *ServiceClient) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("summary service %s: %w", resp.Status, ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
