package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const anthropicVersion = "2023-06-01"

// ResponsesClient talks to the OpenAI Responses API used by ChatGPT.
type ResponsesClient struct {
	cfg  Config
	http *http.Client
}

// NewResponsesClient creates a client for the Responses API endpoint in cfg.
func NewResponsesClient(cfg Config) *ResponsesClient {
	return &ResponsesClient{cfg: cfg, http: newHTTPClient()}
}

func (c *ResponsesClient) Send(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"model": c.cfg.Model,
		"input": prompt,
	}
	headers := map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	}
	return postJSON(ctx, c.http, c.cfg.BaseURL, headers, payload)
}

// ClaudeClient talks to the Anthropic messages API.
type ClaudeClient struct {
	cfg       Config
	http      *http.Client
	maxTokens int
}

// NewClaudeClient creates a client for the Anthropic messages endpoint in cfg.
func NewClaudeClient(cfg Config) *ClaudeClient {
	return &ClaudeClient{cfg: cfg, http: newHTTPClient(), maxTokens: 1024}
}

func (c *ClaudeClient) Send(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"model":      c.cfg.Model,
		"max_tokens": c.maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	headers := map[string]string{
		"x-api-key":         c.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}
	return postJSON(ctx, c.http, c.cfg.BaseURL, headers, payload)
}

// postJSON posts a JSON payload and returns the response body as text.
// Error responses include the API error body for easier debugging.
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("request to %s failed: %s: %s", url, resp.Status, string(data))
	}
	return string(data), nil
}
