// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"strings"
	"sync"
)

// MockClient is a configurable platform.Client used across test packages.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Responses maps prompt substrings to canned raw responses.
	Responses map[string]string

	// DefaultResponse is returned when no Responses key matches.
	DefaultResponse string

	// Err, when set, is returned by every Send call.
	Err error

	// FailFirst makes the first N Send calls fail with Err before
	// succeeding. Used to exercise retry behavior.
	FailFirst int

	calls   int
	prompts []string
}

func (m *MockClient) Send(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	m.prompts = append(m.prompts, prompt)

	if m.Err != nil && (m.FailFirst == 0 || m.calls <= m.FailFirst) {
		return "", m.Err
	}

	for key, resp := range m.Responses {
		if strings.Contains(prompt, key) {
			return resp, nil
		}
	}
	if m.DefaultResponse != "" {
		return m.DefaultResponse, nil
	}
	return `{"choices":[{"message":{"content":"mock response"}}]}`, nil
}

// Calls returns the number of Send invocations.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns a copy of every prompt received, in call order.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}
