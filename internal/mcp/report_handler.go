package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/commercelab/shopbench/internal/server"
	"github.com/commercelab/shopbench/internal/tabular"
)

func handleGetReports(_ context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	name, _ := args["report"].(string)

	if name != "" {
		return getReport(sc.ReportsDir, name)
	}
	return listReports(sc.ReportsDir)
}

func listReports(reportsDir string) (*mcp.CallToolResult, error) {
	entries, err := os.ReadDir(reportsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return mcp.NewToolResultText("[]"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to read reports directory: %v", err)), nil
	}

	reports := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".xlsx") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		reports = append(reports, map[string]interface{}{
			"name":     e.Name(),
			"size":     info.Size(),
			"modified": info.ModTime().UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal reports: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func getReport(reportsDir, name string) (*mcp.CallToolResult, error) {
	path, err := resolveReportPath(reportsDir, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	table, err := tabular.Load(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read report %q: %v", name, err)), nil
	}

	payload := map[string]interface{}{
		"name":    name,
		"columns": table.Columns,
		"rows":    table.Rows,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal report: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func resolveReportPath(reportsDir, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("report is required")
	}
	if strings.Contains(name, string(filepath.Separator)) || strings.Contains(name, "/") {
		return "", fmt.Errorf("path separators are not allowed")
	}
	if name == "." || name == ".." {
		return "", fmt.Errorf("path traversal is not allowed")
	}
	return filepath.Join(reportsDir, name), nil
}
