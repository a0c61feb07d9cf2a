package runner

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercelab/shopbench/internal/platform"
	"github.com/commercelab/shopbench/internal/report"
	"github.com/commercelab/shopbench/internal/scorer"
	"github.com/commercelab/shopbench/internal/tabular"
	"github.com/commercelab/shopbench/internal/testutil"
)

func stepColumns() []string {
	return []string{
		"run_id", "scenario_id", "platform_id", "step_id",
		"step_index", "step_type", "user_prompt", "sku_id",
	}
}

func sourceRows(steps []Step) []tabular.Row {
	rows := make([]tabular.Row, len(steps))
	for i, step := range steps {
		rows[i] = step.Source
	}
	return rows
}

func newTestRunner(t *testing.T, registry *platform.Registry, judge *scorer.Scorer, steps []Step) (*Runner, *report.Sink, *fakeSleeper) {
	t.Helper()

	groups := GroupScenarios(steps, "", "")
	sink := report.NewSink(filepath.Join(t.TempDir(), "report.xlsx"), stepColumns(), sourceRows(FlattenScenarios(groups)))
	require.NoError(t, sink.Flush())

	executor := NewExecutor(registry)
	sleeper := &fakeSleeper{}
	executor.sleep = sleeper.sleep

	return New(executor, judge, sink), sink, sleeper
}

func TestRunExecutesPlatformsConcurrentlyAndInOrder(t *testing.T) {
	claude := &testutil.MockClient{DefaultResponse: `{"content":[{"text":"claude answer"}]}`}
	gemini := &testutil.MockClient{DefaultResponse: `{"candidates":[{"content":{"parts":[{"text":"gemini answer"}]}}]}`}

	registry := platform.NewRegistry()
	registry.Register("CLAUDE", claude)
	registry.Register("GEMINI", gemini)

	steps := []Step{
		makeStepWithPrompt("S1", "CLAUDE", "c1", "1", "p1"),
		makeStepWithPrompt("S1", "CLAUDE", "c2", "2", "p2"),
		makeStepWithPrompt("S1", "GEMINI", "g1", "1", "p1"),
		makeStepWithPrompt("S1", "GEMINI", "g2", "2", "p2"),
	}

	r, sink, sleeper := newTestRunner(t, registry, scorer.New(nil, "", nil), steps)
	require.NoError(t, r.Run(context.Background(), BuildPlatformSequences(GroupScenarios(steps, "", ""))))

	results := sink.Results()
	require.Len(t, results, 4)

	// Steps within each platform ran in step-index order, with the prior
	// exchange folded into the second prompt.
	assert.Equal(t, []string{
		"User: p1",
		"User: p1\nAssistant: claude answer\nUser: p2",
	}, claude.Prompts())
	assert.Equal(t, []string{
		"User: p1",
		"User: p1\nAssistant: gemini answer\nUser: p2",
	}, gemini.Prompts())

	for _, result := range results {
		assert.NotEmpty(t, result.ModelResponse)
		assert.NotEmpty(t, result.FullModelResponse)
		assert.Empty(t, result.Comments)
	}

	// CLAUDE is throttled after each of its two calls; GEMINI is not.
	assert.Equal(t, []time.Duration{DefaultClaudeThrottle, DefaultClaudeThrottle}, sleeper.recorded())

	// The durable report carries all four rows with populated outputs.
	table, err := tabular.Load(sink.Path())
	require.NoError(t, err)
	require.Len(t, table.Rows, 4)
	for _, row := range table.Rows {
		assert.NotEmpty(t, row["model_response"])
	}
}

// rendezvousClient blocks its first Send until release is closed, so a test
// can hold one platform task mid-call while waiting for the other to arrive.
type rendezvousClient struct {
	name    string
	arrived chan<- string
	release <-chan struct{}
	once    sync.Once
}

func (c *rendezvousClient) Send(_ context.Context, _ string) (string, error) {
	c.once.Do(func() {
		c.arrived <- c.name
		<-c.release
	})
	return `{"choices":[{"message":{"content":"ok"}}]}`, nil
}

func TestRunOverlapsPlatformTasks(t *testing.T) {
	arrived := make(chan string, 2)
	release := make(chan struct{})

	registry := platform.NewRegistry()
	registry.Register("CLAUDE", &rendezvousClient{name: "CLAUDE", arrived: arrived, release: release})
	registry.Register("GEMINI", &rendezvousClient{name: "GEMINI", arrived: arrived, release: release})

	steps := []Step{
		makeStepWithPrompt("S1", "CLAUDE", "c1", "1", "p1"),
		makeStepWithPrompt("S1", "GEMINI", "g1", "1", "p1"),
	}

	// Both platforms must be inside Send at the same time before either is
	// released; sequential execution would leave the first one stuck here.
	overlapped := make(chan bool, 1)
	go func() {
		defer close(release)
		seen := 0
		timeout := time.After(5 * time.Second)
		for seen < 2 {
			select {
			case <-arrived:
				seen++
			case <-timeout:
				overlapped <- false
				return
			}
		}
		overlapped <- true
	}()

	r, sink, _ := newTestRunner(t, registry, scorer.New(nil, "", nil), steps)
	require.NoError(t, r.Run(context.Background(), BuildPlatformSequences(GroupScenarios(steps, "", ""))))

	assert.True(t, <-overlapped, "platform tasks did not run concurrently")
	assert.Len(t, sink.Results(), 2)
}

func TestRunRecordsStepFailuresAndContinues(t *testing.T) {
	failing := &testutil.MockClient{Err: errors.New("boom")}
	registry := platform.NewRegistry()
	registry.Register("GEMINI", failing)

	steps := []Step{
		makeStepWithPrompt("S1", "GEMINI", "g1", "1", "p1"),
		makeStepWithPrompt("S1", "GEMINI", "g2", "2", "p2"),
	}

	r, sink, _ := newTestRunner(t, registry, scorer.New(nil, "", nil), steps)
	r.executor.SetRetry(0, time.Second)
	require.NoError(t, r.Run(context.Background(), BuildPlatformSequences(GroupScenarios(steps, "", ""))))

	results := sink.Results()
	require.Len(t, results, 2, "failed steps are recorded, not dropped")
	for _, result := range results {
		assert.Contains(t, result.Comments, "Unexpected error")
		assert.Contains(t, result.Comments, "boom")
		assert.Empty(t, result.ModelResponse)
	}
}

func TestRunRecordsUnconfiguredPlatformSteps(t *testing.T) {
	working := &testutil.MockClient{DefaultResponse: `{"content":[{"text":"fine"}]}`}
	registry := platform.NewRegistry()
	registry.Register("CLAUDE", working)

	steps := []Step{
		makeStepWithPrompt("S1", "CLAUDE", "c1", "1", "p1"),
		makeStepWithPrompt("S1", "GEMINI", "g1", "1", "p1"),
		makeStepWithPrompt("S1", "GEMINI", "g2", "2", "p2"),
	}

	r, sink, _ := newTestRunner(t, registry, scorer.New(nil, "", nil), steps)
	require.NoError(t, r.Run(context.Background(), BuildPlatformSequences(GroupScenarios(steps, "", ""))))

	results := sink.Results()
	require.Len(t, results, 3, "steps of an unconfigured platform are recorded, not dropped")

	byPlatform := make(map[string][]report.Result)
	for _, result := range results {
		byPlatform[result.PlatformID] = append(byPlatform[result.PlatformID], result)
	}

	require.Len(t, byPlatform["CLAUDE"], 1)
	assert.Equal(t, "fine", byPlatform["CLAUDE"][0].ModelResponse)
	assert.Empty(t, byPlatform["CLAUDE"][0].Comments)

	require.Len(t, byPlatform["GEMINI"], 2)
	for _, result := range byPlatform["GEMINI"] {
		assert.Contains(t, result.Comments, "Unexpected error")
		assert.Contains(t, result.Comments, "missing config for platform_id=GEMINI")
		assert.Empty(t, result.ModelResponse)
	}

	// The durable report carries the failure comments too.
	table, err := tabular.Load(sink.Path())
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
	for _, row := range table.Rows {
		if row["platform_id"] == "GEMINI" {
			assert.Contains(t, row["comments"], "missing config for platform_id=GEMINI")
		}
	}
}

func TestRunScoresSuccessfulSteps(t *testing.T) {
	model := &testutil.MockClient{DefaultResponse: `{"content":[{"text":"a great tv"}]}`}
	judge := &testutil.MockClient{
		DefaultResponse: `{"choices":[{"message":{"content":"{\"efficiency_score\": 5, \"comments\": \"well done\"}"}}]}`,
	}

	registry := platform.NewRegistry()
	registry.Register("CLAUDE", model)

	steps := []Step{makeStepWithPrompt("S1", "CLAUDE", "c1", "1", "find a tv")}
	steps[0].Source["sku_id"] = "SKU-1"
	steps[0].SKUID = "SKU-1"

	template := "Judge: {step_type} / {user_prompt} / {model_response} / {ground_truth}"
	truth := map[string]string{"SKU-1": "Acme 55"}

	r, sink, _ := newTestRunner(t, registry, scorer.New(judge, template, truth), steps)
	require.NoError(t, r.Run(context.Background(), BuildPlatformSequences(GroupScenarios(steps, "", ""))))

	results := sink.Results()
	require.Len(t, results, 1)
	assert.Equal(t, "5", results[0].Scores["efficiency_score"])
	assert.Equal(t, "well done", results[0].Comments)
	_, hasComments := results[0].Scores["comments"]
	assert.False(t, hasComments, "judge comments are merged into the step's comments")

	prompts := judge.Prompts()
	require.Len(t, prompts, 1)
	assert.Equal(t, "Judge: search / find a tv / a great tv / Acme 55", prompts[0])
}

func TestRunBenchmarkRecordsUnconfiguredPlatformFailures(t *testing.T) {
	dir := t.TempDir()
	testsPath := filepath.Join(dir, "tests.xlsx")

	rows := []tabular.Row{
		makeStepWithPrompt("S1", "CLAUDE", "c1", "1", "p1").Source,
		makeStepWithPrompt("S1", "CLAUDE", "c2", "2", "p2").Source,
	}
	require.NoError(t, tabular.Write(testsPath, stepColumns(), rows))

	summary, err := RunBenchmark(context.Background(), Options{
		TestsPath:  testsPath,
		EnvPath:    filepath.Join(dir, "missing.env"),
		ReportsDir: filepath.Join(dir, "reports"),
	})
	require.NoError(t, err)

	require.Len(t, summary.Results, 2, "steps without platform config are recorded as failures")
	for _, result := range summary.Results {
		assert.Contains(t, result.Comments, "missing config for platform_id=CLAUDE")
		assert.Empty(t, result.ModelResponse)
	}
	assert.Equal(t, 1, summary.Scenarios)
	assert.Equal(t, []string{"CLAUDE"}, summary.Platforms)

	// The report carries every input row with the failure comment filled in.
	table, err := tabular.Load(summary.ReportPath)
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "p1", table.Rows[0]["user_prompt"])
	for _, row := range table.Rows {
		assert.Contains(t, row["comments"], "missing config for platform_id=CLAUDE")
	}
}

func TestRunBenchmarkRequiresTestsPath(t *testing.T) {
	_, err := RunBenchmark(context.Background(), Options{})
	assert.ErrorContains(t, err, "tests path is required")
}

func makeStepWithPrompt(scenario, platform, stepID, stepIndex, prompt string) Step {
	return StepFromRow(tabular.Row{
		"run_id":      "r1",
		"scenario_id": scenario,
		"platform_id": platform,
		"step_id":     stepID,
		"step_index":  stepIndex,
		"step_type":   "search",
		"user_prompt": prompt,
		"sku_id":      "",
	})
}
