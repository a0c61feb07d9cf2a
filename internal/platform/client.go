// Package platform provides model clients for the AI shopping platforms
// under test, keyed by platform identifier.
package platform

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// Known platform identifiers.
const (
	ChatGPT    = "CHATGPT"
	Claude     = "CLAUDE"
	Gemini     = "GEMINI"
	Copilot    = "COPILOT"
	Perplexity = "PERPLEX"
)

// DefaultTimeout is applied to every outbound model call.
const DefaultTimeout = 60 * time.Second

// Config holds the connection settings for one platform, resolved from the
// credentials env file.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// Client sends a prompt to one platform and returns the raw response payload.
// Text is recovered from the payload separately via ExtractText.
type Client interface {
	Send(ctx context.Context, prompt string) (string, error)
}

// Registry maps upper-cased platform identifiers to clients. New platforms
// are added by registering new implementations, not by branching.
type Registry struct {
	clients map[string]Client
}

// NewRegistry creates an empty client registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

// Register adds a client under the given platform identifier.
func (r *Registry) Register(platformID string, client Client) {
	r.clients[strings.ToUpper(strings.TrimSpace(platformID))] = client
}

// Client returns the client registered for a platform identifier.
func (r *Registry) Client(platformID string) (Client, error) {
	client, ok := r.clients[strings.ToUpper(strings.TrimSpace(platformID))]
	if !ok {
		return nil, fmt.Errorf("missing config for platform_id=%s", platformID)
	}
	return client, nil
}

// IDs returns the registered platform identifiers in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewClient constructs the client implementation for a known platform
// identifier from its config.
func NewClient(platformID string, cfg Config) (Client, error) {
	switch strings.ToUpper(strings.TrimSpace(platformID)) {
	case ChatGPT:
		return NewResponsesClient(cfg), nil
	case Claude:
		return NewClaudeClient(cfg), nil
	case Gemini:
		return NewGeminiClient(cfg), nil
	case Copilot, Perplexity:
		return NewOpenAIChatClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown platform_id=%s", platformID)
	}
}

// KnownPlatforms returns the platform identifiers this build ships clients for.
func KnownPlatforms() []string {
	return []string{ChatGPT, Claude, Copilot, Gemini, Perplexity}
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}
