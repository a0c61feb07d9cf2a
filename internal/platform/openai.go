package platform

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAIChatClient talks to OpenAI-compatible chat completions APIs.
// Perplexity and Copilot both expose this shape behind their own base URLs,
// and the scoring platform is usually reached the same way.
type OpenAIChatClient struct {
	api   *openai.Client
	model string
}

// NewOpenAIChatClient creates a chat completions client for the endpoint in cfg.
func NewOpenAIChatClient(cfg Config) *OpenAIChatClient {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = newHTTPClient()
	return &OpenAIChatClient{
		api:   openai.NewClientWithConfig(config),
		model: cfg.Model,
	}
}

func (c *OpenAIChatClient) Send(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to encode chat completion response: %w", err)
	}
	return string(raw), nil
}
