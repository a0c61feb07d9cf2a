// Package report maintains the durable XLSX snapshot of benchmark progress.
// The whole report is rewritten after every recorded step so an interrupted
// run always leaves a consistent file behind.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/commercelab/shopbench/internal/tabular"
)

// ScoringFields is the fixed set of judge-produced score columns.
// The judge's comments field is handled separately and merged into the
// step's own comments.
var ScoringFields = []string{
	"identity_accuracy_score",
	"attribute_completeness_score",
	"attribute_correctness_score",
	"regulatory_correctness_score",
	"transactional_reliability_score",
	"step_outcome",
	"failure_modes",
	"instant_checkout_feasibility_score",
	"checkout_failure_modes",
	"efficiency_score",
	"query_to_product_match_score",
	"agent_failure_modes",
}

// ResponseFields are the per-step model output columns.
var ResponseFields = []string{
	"model_response",
	"full_model_response",
	"text_model_response",
	"comments",
}

// OutputFields lists every column a result can contribute to the report.
var OutputFields = append(append([]string{}, ResponseFields...), ScoringFields...)

// Key identifies one input row and its result. Duplicate keys are resolved
// last-write-wins.
type Key struct {
	RunID      string
	ScenarioID string
	PlatformID string
	StepID     string
	StepIndex  string
	StepType   string
}

// KeyFromRow builds the identity key for an input row.
func KeyFromRow(row tabular.Row) Key {
	return Key{
		RunID:      row["run_id"],
		ScenarioID: row["scenario_id"],
		PlatformID: row["platform_id"],
		StepID:     row["step_id"],
		StepIndex:  row["step_index"],
		StepType:   row["step_type"],
	}
}

// Result is the outcome of one executed step.
type Result struct {
	ScenarioID        string
	PlatformID        string
	StepID            string
	StepIndex         string
	StepType          string
	RunID             string
	UserPrompt        string
	ModelResponse     string
	FullModelResponse string
	TextModelResponse string
	Comments          string
	Scores            map[string]string // nil when scoring did not run
}

// Key returns the identity key used to match the result to its input row.
func (r Result) Key() Key {
	return Key{
		RunID:      r.RunID,
		ScenarioID: r.ScenarioID,
		PlatformID: r.PlatformID,
		StepID:     r.StepID,
		StepIndex:  r.StepIndex,
		StepType:   r.StepType,
	}
}

// outputField returns the result's value for an output column and whether
// the result carries that column at all.
func (r Result) outputField(name string) (string, bool) {
	switch name {
	case "model_response":
		return r.ModelResponse, true
	case "full_model_response":
		return r.FullModelResponse, true
	case "text_model_response":
		return r.TextModelResponse, true
	case "comments":
		return r.Comments, true
	}
	value, ok := r.Scores[name]
	return value, ok
}

// formatScenario renders the identity key as a pipe-delimited string for
// reports built without input rows.
func formatScenario(r Result) string {
	return strings.Join([]string{
		r.RunID, r.ScenarioID, r.PlatformID, r.StepID, r.StepIndex, r.StepType,
	}, "|")
}

// BuildReportPath creates the reports directory and returns a timestamped
// report path inside it.
func BuildReportPath(reportsDir string) (string, error) {
	if err := os.MkdirAll(reportsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}
	timestamp := time.Now().UTC().Format("20060102_150405")
	return filepath.Join(reportsDir, fmt.Sprintf("test_report_%s.xlsx", timestamp)), nil
}

// Sink accumulates results and rewrites the report after every append.
// Append-and-rewrite is one critical section; callers across platform
// goroutines share a single Sink.
type Sink struct {
	mu        sync.Mutex
	path      string
	columns   []string
	inputRows []tabular.Row
	results   []Result
}

// NewSink creates a sink writing to path. columns and inputRows come from
// the loaded (and filtered) test sheet; both may be empty.
func NewSink(path string, columns []string, inputRows []tabular.Row) *Sink {
	return &Sink{path: path, columns: columns, inputRows: inputRows}
}

// Path returns the report file location.
func (s *Sink) Path() string {
	return s.path
}

// Append records a result and rewrites the full report.
func (s *Sink) Append(result Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return s.write()
}

// Flush rewrites the report from the current state. Used to initialize the
// report file before any step runs.
func (s *Sink) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

// Results returns a copy of the recorded results in append order.
func (s *Sink) Results() []Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Result, len(s.results))
	copy(out, s.results)
	return out
}

// Count returns the number of recorded results.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

func (s *Sink) write() error {
	columns, rows := Render(s.columns, s.inputRows, s.results)
	return tabular.Write(s.path, columns, rows)
}

// Render derives the report's column list and rows from the input rows and
// accumulated results. Exposed for reuse by one-shot report writes.
func Render(columns []string, inputRows []tabular.Row, results []Result) ([]string, []tabular.Row) {
	fieldnames := extractFieldnames(columns, inputRows, results)

	resultsByKey := make(map[Key]Result, len(results))
	for _, result := range results {
		resultsByKey[result.Key()] = result
	}

	rows := make([]tabular.Row, 0, len(inputRows))
	for _, inputRow := range inputRows {
		row := make(tabular.Row, len(inputRow)+len(OutputFields))
		for k, v := range inputRow {
			row[k] = v
		}
		if result, ok := resultsByKey[KeyFromRow(inputRow)]; ok {
			for _, field := range OutputFields {
				value, inResult := result.outputField(field)
				if _, inRow := row[field]; inRow || inResult {
					row[field] = value
				}
			}
		}
		rows = append(rows, row)
	}

	if len(inputRows) == 0 && len(results) > 0 {
		for _, result := range results {
			row := tabular.Row{
				"scenario":    formatScenario(result),
				"user_prompt": result.UserPrompt,
			}
			for _, field := range OutputFields {
				value, _ := result.outputField(field)
				row[field] = value
			}
			rows = append(rows, row)
		}
	}

	return fieldnames, rows
}

// extractFieldnames picks the report columns: the input sheet's columns plus
// any output field present in a result, or a minimal column set when there
// are no input rows.
func extractFieldnames(columns []string, inputRows []tabular.Row, results []Result) []string {
	if len(inputRows) > 0 {
		fieldnames := append([]string{}, columns...)
		return appendMissingFields(fieldnames, results)
	}
	if len(results) > 0 {
		fieldnames := append([]string{"scenario", "user_prompt"}, OutputFields...)
		return fieldnames
	}
	return nil
}

func appendMissingFields(fieldnames []string, results []Result) []string {
	present := make(map[string]bool, len(fieldnames))
	for _, name := range fieldnames {
		present[name] = true
	}
	for _, field := range OutputFields {
		if present[field] {
			continue
		}
		for _, result := range results {
			if _, ok := result.outputField(field); ok {
				fieldnames = append(fieldnames, field)
				break
			}
		}
	}
	return fieldnames
}
