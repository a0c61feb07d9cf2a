package runner

import "github.com/commercelab/shopbench/internal/tabular"

// Step is one prompt/response exchange of a scenario, loaded from the test
// sheet. Steps are never mutated after load; Source keeps the originating
// row so the report can pass unknown input columns through untouched.
type Step struct {
	ScenarioID string
	PlatformID string
	StepID     string
	StepIndex  string
	StepType   string
	UserPrompt string
	SKUID      string
	RunID      string

	Source tabular.Row
}

// StepFromRow builds a Step from a test sheet row.
func StepFromRow(row tabular.Row) Step {
	return Step{
		ScenarioID: row["scenario_id"],
		PlatformID: row["platform_id"],
		StepID:     row["step_id"],
		StepIndex:  row["step_index"],
		StepType:   row["step_type"],
		UserPrompt: row["user_prompt"],
		SKUID:      row["sku_id"],
		RunID:      row["run_id"],
		Source:     row,
	}
}
