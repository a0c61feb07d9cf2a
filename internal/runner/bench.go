package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/commercelab/shopbench/internal/config"
	"github.com/commercelab/shopbench/internal/groundtruth"
	"github.com/commercelab/shopbench/internal/platform"
	"github.com/commercelab/shopbench/internal/report"
	"github.com/commercelab/shopbench/internal/scorer"
	"github.com/commercelab/shopbench/internal/tabular"
)

// DefaultReportsDir is where reports land unless overridden.
const DefaultReportsDir = "reports"

// Options configures a full benchmark run.
type Options struct {
	TestsPath         string
	EnvPath           string
	IncludePlatforms  []string
	ExcludePlatforms  []string
	ScenarioStart     string
	ScenarioEnd       string
	GroundTruthPath   string
	ScoringPromptPath string
	ScoringPlatformID string
	ReportsDir        string
}

// Summary describes a completed benchmark run.
type Summary struct {
	ReportPath string
	Results    []report.Result
	Scenarios  int
	Platforms  []string
}

// RunBenchmark loads the inputs, builds the execution plan, and drives the
// platform tasks to completion. Missing optional inputs (ground truth,
// scoring prompt, scoring config) disable scoring instead of failing.
func RunBenchmark(ctx context.Context, opts Options) (*Summary, error) {
	if opts.TestsPath == "" {
		return nil, errors.New("tests path is required")
	}

	slog.Info("loading test rows", "path", opts.TestsPath)
	env := config.LoadEnvFile(opts.EnvPath)
	registry := env.BuildRegistry()

	scoringClient := resolveScoringClient(env, opts.ScoringPlatformID)

	var template string
	if data, err := os.ReadFile(opts.ScoringPromptPath); err == nil {
		template = string(data)
	} else {
		scoringClient = nil
		slog.Info("scoring prompt missing; skipping scoring", "path", opts.ScoringPromptPath)
	}

	truth := map[string]string{}
	if loaded, err := groundtruth.Load(opts.GroundTruthPath); err == nil {
		truth = loaded
	} else {
		scoringClient = nil
		slog.Info("ground truth missing; skipping scoring", "path", opts.GroundTruthPath)
	}

	table, err := tabular.Load(opts.TestsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tests: %w", err)
	}

	rows := filterPlatformRows(table.Rows, opts.IncludePlatforms, opts.ExcludePlatforms)
	steps := make([]Step, 0, len(rows))
	for _, row := range rows {
		steps = append(steps, StepFromRow(row))
	}

	groups := GroupScenarios(steps, opts.ScenarioStart, opts.ScenarioEnd)
	flattened := FlattenScenarios(groups)
	inputRows := make([]tabular.Row, len(flattened))
	for i, step := range flattened {
		inputRows[i] = step.Source
	}
	slog.Info("loaded scenarios", "rows", len(inputRows), "scenarios", len(groups))

	reportsDir := opts.ReportsDir
	if reportsDir == "" {
		reportsDir = DefaultReportsDir
	}
	reportPath, err := report.BuildReportPath(reportsDir)
	if err != nil {
		return nil, err
	}
	sink := report.NewSink(reportPath, table.Columns, inputRows)
	if err := sink.Flush(); err != nil {
		return nil, fmt.Errorf("failed to initialize report: %w", err)
	}
	slog.Info("initialized report", "path", reportPath)

	sequences := BuildPlatformSequences(groups)
	r := New(NewExecutor(registry), scorer.New(scoringClient, template, truth), sink)
	if err := r.Run(ctx, sequences); err != nil {
		return nil, err
	}

	results := sink.Results()
	slog.Info("run complete", "steps", len(results), "report", reportPath)

	platforms := make([]string, 0, len(sequences))
	for platformID := range sequences {
		platforms = append(platforms, platformID)
	}
	sort.Strings(platforms)

	return &Summary{
		ReportPath: reportPath,
		Results:    results,
		Scenarios:  len(groups),
		Platforms:  platforms,
	}, nil
}

// resolveScoringClient builds the judge's client, or nil when the scoring
// platform has no usable config.
func resolveScoringClient(env config.Env, scoringPlatformID string) platform.Client {
	scoringPlatformID = strings.TrimSpace(scoringPlatformID)
	if scoringPlatformID == "" {
		return nil
	}
	cfg, ok := env.PlatformConfig(scoringPlatformID)
	if !ok {
		slog.Info("missing scoring config; skipping scoring", "platform_id", scoringPlatformID)
		return nil
	}
	client, err := platform.NewClient(scoringPlatformID, cfg)
	if err != nil {
		slog.Warn("scoring platform unavailable; skipping scoring",
			"platform_id", scoringPlatformID,
			"error", err,
		)
		return nil
	}
	return client
}

// filterPlatformRows applies the include and exclude platform lists,
// comparing platform ids case-insensitively.
func filterPlatformRows(rows []tabular.Row, include, exclude []string) []tabular.Row {
	included := normalizePlatformSet(include)
	excluded := normalizePlatformSet(exclude)
	if len(included) == 0 && len(excluded) == 0 {
		return rows
	}

	var filtered []tabular.Row
	for _, row := range rows {
		platformID := strings.ToUpper(row["platform_id"])
		if len(included) > 0 && !included[platformID] {
			continue
		}
		if excluded[platformID] {
			continue
		}
		filtered = append(filtered, row)
	}
	if len(included) > 0 {
		slog.Info("filtered rows by included platforms", "rows", len(filtered))
	}
	if len(excluded) > 0 {
		slog.Info("filtered rows by excluded platforms", "rows", len(filtered))
	}
	return filtered
}

func normalizePlatformSet(platforms []string) map[string]bool {
	set := make(map[string]bool, len(platforms))
	for _, p := range platforms {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			set[p] = true
		}
	}
	return set
}
