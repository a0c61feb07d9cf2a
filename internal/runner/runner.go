// Package runner is the execution engine: it groups test rows into ordered
// scenario/platform units, runs one concurrent task per platform with
// sequential scenarios inside, retries failed model calls, invokes scoring,
// and records every step into the shared report sink.
package runner

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/commercelab/shopbench/internal/report"
	"github.com/commercelab/shopbench/internal/scorer"
)

// Runner wires the executor, scorer and report sink together.
type Runner struct {
	executor *Executor
	scorer   *scorer.Scorer
	sink     *report.Sink
}

// New creates a runner. judge may be a disabled scorer.
func New(executor *Executor, judge *scorer.Scorer, sink *report.Sink) *Runner {
	return &Runner{executor: executor, scorer: judge, sink: sink}
}

// Run executes one concurrent task per platform sequence. A task that fails
// (report write errors included) is logged and abandoned without affecting
// sibling platforms, so Run itself always returns nil.
func (r *Runner) Run(ctx context.Context, sequences map[string][]ScenarioSteps) error {
	g := new(errgroup.Group)
	for platformID, scenarios := range sequences {
		g.Go(func() error {
			if err := r.runPlatformSequence(ctx, platformID, scenarios); err != nil {
				slog.Error("unexpected error while running platform",
					"platform_id", platformID,
					"error", err,
				)
			}
			return nil
		})
	}
	return g.Wait()
}

// runPlatformSequence executes a platform's scenarios strictly in order.
// Scenarios and their steps are sequential because each step's prompt
// depends on the conversation history accumulated within the scenario.
// A missing platform config is not special-cased here: every step still
// reaches the report, carrying the executor's error as its comment.
func (r *Runner) runPlatformSequence(ctx context.Context, platformID string, scenarios []ScenarioSteps) error {
	for _, scenario := range scenarios {
		slog.Info("running scenario",
			"scenario_id", scenario.ScenarioID,
			"platform_id", platformID,
			"steps", len(scenario.Steps),
		)

		var history []Turn
		for _, step := range scenario.Steps {
			if err := ctx.Err(); err != nil {
				return err
			}
			var err error
			history, err = r.runStep(ctx, scenario.ScenarioID, platformID, step, history)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// runStep executes one step, scores it, and records the result. Model and
// scoring failures become comments on the recorded result; only report
// write failures propagate.
func (r *Runner) runStep(ctx context.Context, scenarioID, platformID string, step Step, history []Turn) ([]Turn, error) {
	stepScenarioID, stepPlatformID := resolveStepIdentity(scenarioID, platformID, step)
	prompt := step.UserPrompt
	fullPrompt := BuildConversationPrompt(history, prompt)

	slog.Info("executing step",
		"scenario_id", stepScenarioID,
		"platform_id", stepPlatformID,
		"step_id", step.StepID,
		"step_index", step.StepIndex,
	)

	var comments string
	var scores map[string]string
	raw, text, err := r.executor.Execute(ctx, stepPlatformID, fullPrompt, step)
	if err != nil {
		raw, text = "", ""
		comments = fmt.Sprintf("Unexpected error: %v", err)
		slog.Error("unexpected error while executing step",
			"scenario_id", stepScenarioID,
			"platform_id", stepPlatformID,
			"step_id", step.StepID,
			"step_index", step.StepIndex,
			"error", err,
		)
	} else {
		var scoringErr string
		scores, scoringErr = r.scorer.Score(ctx, scorer.StepContext{
			ScenarioID: stepScenarioID,
			PlatformID: stepPlatformID,
			StepID:     step.StepID,
			StepIndex:  step.StepIndex,
			StepType:   step.StepType,
			UserPrompt: step.UserPrompt,
			SKUID:      step.SKUID,
		}, text)
		if scores != nil {
			comments = scores["comments"]
			delete(scores, "comments")
		}
		comments = scorer.JoinComments(comments, scoringErr)
	}

	result := report.Result{
		ScenarioID:        stepScenarioID,
		PlatformID:        stepPlatformID,
		StepID:            step.StepID,
		StepIndex:         step.StepIndex,
		StepType:          step.StepType,
		RunID:             step.RunID,
		UserPrompt:        prompt,
		ModelResponse:     text,
		FullModelResponse: raw,
		TextModelResponse: text,
		Comments:          comments,
		Scores:            scores,
	}

	history = appendConversationTurn(history, prompt, text)

	if err := r.sink.Append(result); err != nil {
		return history, fmt.Errorf("failed to update report: %w", err)
	}
	slog.Info("updated report after step",
		"scenario_id", stepScenarioID,
		"platform_id", stepPlatformID,
		"step_id", step.StepID,
		"step_index", step.StepIndex,
	)
	return history, nil
}

// resolveStepIdentity prefers the step row's own identifiers over the
// grouping keys, warning when they disagree.
func resolveStepIdentity(scenarioID, platformID string, step Step) (string, string) {
	stepScenarioID := step.ScenarioID
	if stepScenarioID == "" {
		stepScenarioID = scenarioID
	} else if stepScenarioID != scenarioID {
		slog.Warn("step scenario_id mismatch; using step value",
			"step_scenario_id", stepScenarioID,
			"grouped_scenario_id", scenarioID,
		)
	}

	stepPlatformID := step.PlatformID
	if stepPlatformID == "" {
		stepPlatformID = platformID
	} else if stepPlatformID != platformID {
		slog.Warn("step platform_id mismatch; using step value",
			"step_platform_id", stepPlatformID,
			"grouped_platform_id", platformID,
		)
	}
	return stepScenarioID, stepPlatformID
}
