package platform

import "encoding/json"

// extractor pulls plain text out of one known response payload shape,
// returning false when the shape does not match.
type extractor func(data map[string]interface{}) (string, bool)

// extractors are tried in priority order. The raw payload is the final
// fallback when none match or the payload is not a JSON object.
var extractors = []extractor{
	extractResponsesOutput,
	extractChatChoices,
	extractContentList,
	extractCandidates,
}

// ExtractText recovers the plain text content from a raw response payload.
// Unparseable payloads are returned unchanged.
func ExtractText(raw string) string {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return raw
	}
	for _, extract := range extractors {
		if text, ok := extract(data); ok {
			return text
		}
	}
	return raw
}

// extractResponsesOutput handles the OpenAI Responses API shape:
// a top-level output_text, or output items of type "message".
func extractResponsesOutput(data map[string]interface{}) (string, bool) {
	if text, ok := data["output_text"].(string); ok && text != "" {
		return text, true
	}
	items, ok := data["output"].([]interface{})
	if !ok {
		return "", false
	}
	var combined string
	for _, item := range items {
		msg, ok := item.(map[string]interface{})
		if !ok || msg["type"] != "message" {
			continue
		}
		contents, _ := msg["content"].([]interface{})
		for _, content := range contents {
			part, ok := content.(map[string]interface{})
			if !ok {
				continue
			}
			if text, ok := part["text"].(string); ok {
				combined += text
			}
		}
	}
	return combined, combined != ""
}

// extractChatChoices handles the chat completions shape:
// choices[0].message.content.
func extractChatChoices(data map[string]interface{}) (string, bool) {
	choices, ok := data["choices"].([]interface{})
	if !ok || len(choices) == 0 {
		return "", false
	}
	choice, ok := choices[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	message, ok := choice["message"].(map[string]interface{})
	if !ok {
		return "", false
	}
	text, ok := message["content"].(string)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

// extractContentList handles the Anthropic messages shape:
// a top-level content list of text parts.
func extractContentList(data map[string]interface{}) (string, bool) {
	contents, ok := data["content"].([]interface{})
	if !ok {
		return "", false
	}
	var combined string
	for _, content := range contents {
		part, ok := content.(map[string]interface{})
		if !ok {
			continue
		}
		if text, ok := part["text"].(string); ok {
			combined += text
		}
	}
	return combined, combined != ""
}

// extractCandidates handles the Gemini generate-content shape:
// candidates[].content.parts[].text.
func extractCandidates(data map[string]interface{}) (string, bool) {
	candidates, ok := data["candidates"].([]interface{})
	if !ok {
		return "", false
	}
	var combined string
	for _, candidate := range candidates {
		entry, ok := candidate.(map[string]interface{})
		if !ok {
			continue
		}
		content, ok := entry["content"].(map[string]interface{})
		if !ok {
			continue
		}
		parts, _ := content["parts"].([]interface{})
		for _, p := range parts {
			part, ok := p.(map[string]interface{})
			if !ok {
				continue
			}
			if text, ok := part["text"].(string); ok {
				combined += text
			}
		}
	}
	return combined, combined != ""
}
