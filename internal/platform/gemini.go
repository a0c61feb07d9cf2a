package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient talks to Gemini through the google genai SDK. Unlike the
// REST-backed platforms there is no base URL; the SDK owns the transport.
type GeminiClient struct {
	cfg Config
}

// NewGeminiClient creates a Gemini client for the API key and model in cfg.
func NewGeminiClient(cfg Config) *GeminiClient {
	return &GeminiClient{cfg: cfg}
}

func (c *GeminiClient) Send(ctx context.Context, prompt string) (string, error) {
	model := strings.TrimSpace(c.cfg.Model)
	if model == "" {
		return "", fmt.Errorf("missing GEMINI_MODEL")
	}

	// API-key mode against AI Studio; Vertex auth is not supported here.
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     c.cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: newHTTPClient(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create genai client: %w", err)
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate content failed: %w", err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode gemini response: %w", err)
	}
	return string(raw), nil
}
