package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextResponsesOutput(t *testing.T) {
	raw := `{"output_text": "direct output"}`
	assert.Equal(t, "direct output", ExtractText(raw))

	raw = `{"output": [
		{"type": "reasoning"},
		{"type": "message", "content": [{"type": "output_text", "text": "part one "}, {"text": "part two"}]}
	]}`
	assert.Equal(t, "part one part two", ExtractText(raw))
}

func TestExtractTextChatChoices(t *testing.T) {
	raw := `{"choices": [{"message": {"role": "assistant", "content": "the answer"}}]}`
	assert.Equal(t, "the answer", ExtractText(raw))
}

func TestExtractTextContentList(t *testing.T) {
	raw := `{"content": [{"type": "text", "text": "claude "}, {"type": "text", "text": "says"}]}`
	assert.Equal(t, "claude says", ExtractText(raw))
}

func TestExtractTextCandidates(t *testing.T) {
	raw := `{"candidates": [{"content": {"parts": [{"text": "gemini "}, {"text": "says"}]}}]}`
	assert.Equal(t, "gemini says", ExtractText(raw))
}

func TestExtractTextFallsBackToRaw(t *testing.T) {
	assert.Equal(t, "not json at all", ExtractText("not json at all"))
	assert.Equal(t, `{"unknown": "shape"}`, ExtractText(`{"unknown": "shape"}`))
	assert.Equal(t, "", ExtractText(""))
}

func TestRegistryLookupIsCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	r.Register("claude", NewClaudeClient(Config{BaseURL: "http://localhost", APIKey: "k"}))

	client, err := r.Client("CLAUDE")
	require.NoError(t, err)
	assert.NotNil(t, client)

	_, err = r.Client("GEMINI")
	assert.ErrorContains(t, err, "missing config for platform_id=GEMINI")
}

func TestNewClientUnknownPlatform(t *testing.T) {
	_, err := NewClient("MYSTERY", Config{})
	assert.ErrorContains(t, err, "unknown platform_id=MYSTERY")
}
