package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/commercelab/shopbench/internal/server"
)

// RegisterTools registers all MCP tools with the server.
func RegisterTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// list_datasets
	listDatasetsTool := mcp.NewTool("list_datasets",
		mcp.WithDescription("List available benchmark datasets with their input file locations"),
	)
	s.AddTool(listDatasetsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListDatasets(ctx, request, sc)
	})

	// list_platforms
	listPlatformsTool := mcp.NewTool("list_platforms",
		mcp.WithDescription("List known AI platforms and whether credentials are configured for each"),
	)
	s.AddTool(listPlatformsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListPlatforms(ctx, request, sc)
	})

	// run_benchmark
	runTool := mcp.NewTool("run_benchmark",
		mcp.WithDescription("Run shopping scenarios against the configured AI platforms, score responses, and write an XLSX report"),
		mcp.WithString("setting",
			mcp.Description("Dataset name to run (default: the registry's default dataset)"),
		),
		mcp.WithString("platforms",
			mcp.Description("Comma-separated platform IDs to include (default: all platforms in the dataset)"),
		),
		mcp.WithString("exclude_platforms",
			mcp.Description("Comma-separated platform IDs to skip"),
		),
		mcp.WithString("scenario_start",
			mcp.Description("First scenario ID of the window to run (inclusive)"),
		),
		mcp.WithString("scenario_end",
			mcp.Description("Last scenario ID of the window to run (inclusive)"),
		),
	)
	s.AddTool(runTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRunBenchmark(ctx, request, sc)
	})

	// get_reports
	getReportsTool := mcp.NewTool("get_reports",
		mcp.WithDescription("List generated report files, or fetch the contents of one report"),
		mcp.WithString("report",
			mcp.Description("Specific report file name to read (optional, lists all if omitted)"),
		),
	)
	s.AddTool(getReportsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleGetReports(ctx, request, sc)
	})

	return nil
}
