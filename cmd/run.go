package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/commercelab/shopbench/internal/config"
	"github.com/commercelab/shopbench/internal/runner"
)

func newRunCmd() *cobra.Command {
	var (
		setting          string
		testsPath        string
		includePlatforms []string
		excludePlatforms []string
		scenarioStart    string
		scenarioEnd      string
		timeout          time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run shopping scenarios against the configured AI platforms",
		Long: `Execute the benchmark by sending each scenario's steps to every configured
platform, scoring the responses with the LLM judge, and writing an XLSX report.

The report is rewritten after every completed step, so a partial run still
leaves a consistent report behind.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			envPath, _ := cmd.Flags().GetString("env")
			datasetsPath, _ := cmd.Flags().GetString("datasets")
			reportsDir, _ := cmd.Flags().GetString("reports-dir")

			dataset, err := config.ResolveDataset(setting, datasetsPath)
			if err != nil {
				return fmt.Errorf("failed to resolve dataset: %w", err)
			}
			if testsPath == "" {
				testsPath = dataset.Tests
			}

			env := config.LoadEnvFile(envPath)

			opts := runner.Options{
				TestsPath:         testsPath,
				EnvPath:           envPath,
				IncludePlatforms:  includePlatforms,
				ExcludePlatforms:  excludePlatforms,
				ScenarioStart:     scenarioStart,
				ScenarioEnd:       scenarioEnd,
				GroundTruthPath:   dataset.GroundTruth,
				ScoringPromptPath: dataset.ScoringPrompt,
				ScoringPlatformID: env.ScoringPlatformID(),
				ReportsDir:        reportsDir,
			}

			fmt.Printf("Tests: %s\n", testsPath)
			if scenarioStart != "" || scenarioEnd != "" {
				fmt.Printf("Scenario window: [%s, %s]\n", scenarioStart, scenarioEnd)
			}
			fmt.Println()

			summary, err := runner.RunBenchmark(ctx, opts)
			if err != nil {
				return err
			}

			fmt.Printf("\nBenchmark completed.\n")
			fmt.Printf("Scenarios: %d\n", summary.Scenarios)
			fmt.Printf("Platforms: %v\n", summary.Platforms)
			fmt.Printf("Results: %d\n", len(summary.Results))
			fmt.Printf("Report: %s\n", summary.ReportPath)

			slog.Info("benchmark run complete", "report", summary.ReportPath, "results", len(summary.Results))
			return nil
		},
	}

	cmd.Flags().StringVar(&setting, "setting", "", "Dataset name to run (default: the registry's default dataset)")
	cmd.Flags().StringVar(&testsPath, "tests", "", "Path to the tests XLSX file (overrides the dataset)")
	cmd.Flags().StringSliceVar(&includePlatforms, "platform", nil, "Platform IDs to include (repeatable; default: all in the tests file)")
	cmd.Flags().StringSliceVar(&excludePlatforms, "exclude-platform", nil, "Platform IDs to skip (repeatable)")
	cmd.Flags().StringVar(&scenarioStart, "scenario-start", "", "First scenario ID of the window to run (inclusive)")
	cmd.Flags().StringVar(&scenarioEnd, "scenario-end", "", "Last scenario ID of the window to run (inclusive)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Overall timeout for the run (e.g. 30m, 1h). 0 means no timeout")

	return cmd
}
