// Package scorer grades completed steps with an LLM-as-judge platform and
// normalizes the judge's JSON verdict onto the fixed scoring columns.
package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/commercelab/shopbench/internal/platform"
	"github.com/commercelab/shopbench/internal/report"
)

// StepContext carries the step fields the scoring prompt template needs.
type StepContext struct {
	ScenarioID string
	PlatformID string
	StepID     string
	StepIndex  string
	StepType   string
	UserPrompt string
	SKUID      string
}

// Scorer sends a filled scoring prompt to the judging platform and parses
// the response. A nil Scorer or nil client disables scoring entirely.
type Scorer struct {
	client      platform.Client
	template    string
	groundTruth map[string]string
}

// New creates a scorer. client may be nil to disable scoring.
func New(client platform.Client, template string, groundTruth map[string]string) *Scorer {
	return &Scorer{client: client, template: template, groundTruth: groundTruth}
}

// Score grades one step's response. It returns the scoring field values
// (including the judge's own "comments" entry when present) and an error
// comment. Scoring never fails the step: every error path degrades to empty
// scores plus a comment.
func (s *Scorer) Score(ctx context.Context, step StepContext, modelResponse string) (map[string]string, string) {
	if s == nil || s.client == nil {
		return nil, ""
	}
	if s.template == "" {
		return emptyScores(), "Scoring prompt missing."
	}
	if modelResponse == "" {
		return emptyScores(), ""
	}

	prompt := FillTemplate(s.template, step, modelResponse, s.groundTruth[step.SKUID])

	raw, err := s.client.Send(ctx, prompt)
	if err != nil {
		slog.Error("scoring call failed",
			"scenario_id", step.ScenarioID,
			"platform_id", step.PlatformID,
			"step_id", step.StepID,
			"step_index", step.StepIndex,
			"error", err,
		)
		return emptyScores(), fmt.Sprintf("Scoring error: %v", err)
	}

	scores := ParseScores(platform.ExtractText(raw))

	normalized := emptyScores()
	for field := range normalized {
		if value, ok := scores[field]; ok {
			normalized[field] = normalizeValue(value)
		}
	}
	return normalized, ""
}

// FillTemplate substitutes the named placeholders of a scoring prompt
// template.
func FillTemplate(template string, step StepContext, modelResponse, groundTruth string) string {
	return strings.NewReplacer(
		"{step_type}", step.StepType,
		"{user_prompt}", step.UserPrompt,
		"{model_response}", modelResponse,
		"{ground_truth}", groundTruth,
	).Replace(template)
}

// ParseScores parses the judge's response as a JSON object. When the text
// is not directly parseable it falls back to the substring between the first
// "{" and the last "}", tolerating leading and trailing commentary. Both
// failing yields an empty map, never an error.
func ParseScores(text string) map[string]interface{} {
	if scores, ok := decodeObject(text); ok {
		return scores
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return map[string]interface{}{}
	}
	if scores, ok := decodeObject(text[start : end+1]); ok {
		return scores
	}
	return map[string]interface{}{}
}

func decodeObject(text string) (map[string]interface{}, bool) {
	decoder := json.NewDecoder(strings.NewReader(text))
	decoder.UseNumber()
	var scores map[string]interface{}
	if err := decoder.Decode(&scores); err != nil || scores == nil {
		return nil, false
	}
	return scores, true
}

// emptyScores returns every scoring field, plus the judge's comments slot,
// mapped to an empty value.
func emptyScores() map[string]string {
	scores := make(map[string]string, len(report.ScoringFields)+1)
	for _, field := range report.ScoringFields {
		scores[field] = ""
	}
	scores["comments"] = ""
	return scores
}

// normalizeValue renders a parsed JSON value as a clean report cell.
func normalizeValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}

// JoinComments merges a step comment with a scoring comment, keeping both
// when both are present.
func JoinComments(comment, extra string) string {
	if comment == "" {
		return extra
	}
	if extra == "" {
		return comment
	}
	return comment + " | " + extra
}
