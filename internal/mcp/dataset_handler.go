package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/commercelab/shopbench/internal/config"
	"github.com/commercelab/shopbench/internal/platform"
	"github.com/commercelab/shopbench/internal/server"
)

func handleListDatasets(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	datasets, defaultName, err := config.LoadDatasets(sc.DatasetsPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load dataset registry: %v", err)), nil
	}

	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		d := datasets[name]
		entries = append(entries, map[string]interface{}{
			"name":           name,
			"tests":          d.Tests,
			"ground_truth":   d.GroundTruth,
			"scoring_prompt": d.ScoringPrompt,
			"default":        name == defaultName,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal datasets: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func handleListPlatforms(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	env := config.LoadEnvFile(sc.EnvPath)

	entries := make([]map[string]interface{}, 0, len(platform.KnownPlatforms()))
	for _, id := range platform.KnownPlatforms() {
		cfg, configured := env.PlatformConfig(id)
		entry := map[string]interface{}{
			"platform_id": id,
			"configured":  configured,
		}
		if configured {
			entry["model"] = cfg.Model
		}
		entries = append(entries, entry)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal platforms: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
