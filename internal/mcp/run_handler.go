package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/commercelab/shopbench/internal/config"
	"github.com/commercelab/shopbench/internal/runner"
	"github.com/commercelab/shopbench/internal/server"
)

func handleRunBenchmark(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	setting, _ := args["setting"].(string)
	dataset, err := config.ResolveDataset(setting, sc.DatasetsPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to resolve dataset: %v", err)), nil
	}

	include, _ := args["platforms"].(string)
	exclude, _ := args["exclude_platforms"].(string)
	scenarioStart, _ := args["scenario_start"].(string)
	scenarioEnd, _ := args["scenario_end"].(string)

	env := config.LoadEnvFile(sc.EnvPath)

	opts := runner.Options{
		TestsPath:         dataset.Tests,
		EnvPath:           sc.EnvPath,
		IncludePlatforms:  splitPlatformList(include),
		ExcludePlatforms:  splitPlatformList(exclude),
		ScenarioStart:     scenarioStart,
		ScenarioEnd:       scenarioEnd,
		GroundTruthPath:   dataset.GroundTruth,
		ScoringPromptPath: dataset.ScoringPrompt,
		ScoringPlatformID: env.ScoringPlatformID(),
		ReportsDir:        sc.ReportsDir,
	}

	slog.Info("starting benchmark run", "setting", setting, "tests", dataset.Tests)
	summary, err := runner.RunBenchmark(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("benchmark run failed: %v", err)), nil
	}

	payload := map[string]interface{}{
		"report_path": summary.ReportPath,
		"results":     len(summary.Results),
		"scenarios":   summary.Scenarios,
		"platforms":   summary.Platforms,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal summary: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func splitPlatformList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
