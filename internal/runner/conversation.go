package runner

import "strings"

// Turn is one conversation exchange entry.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// BuildConversationPrompt renders the accumulated history plus the current
// user prompt as a plain-text transcript, so stateless request/response APIs
// still see the multi-turn context. Empty turns are skipped.
func BuildConversationPrompt(history []Turn, userPrompt string) string {
	var parts []string
	for _, turn := range history {
		if turn.Content == "" {
			continue
		}
		label := "Assistant"
		if turn.Role == "user" {
			label = "User"
		}
		parts = append(parts, label+": "+turn.Content)
	}
	parts = append(parts, "User: "+userPrompt)
	return strings.Join(parts, "\n")
}

// appendConversationTurn records a completed exchange in the history.
func appendConversationTurn(history []Turn, userPrompt, assistantResponse string) []Turn {
	return append(history,
		Turn{Role: "user", Content: userPrompt},
		Turn{Role: "assistant", Content: assistantResponse},
	)
}
