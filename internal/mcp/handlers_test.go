package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercelab/shopbench/internal/server"
	"github.com/commercelab/shopbench/internal/tabular"
)

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	content, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return content.Text
}

func TestHandleListDatasets(t *testing.T) {
	sc := &server.ServerContext{}

	result, err := handleListDatasets(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)

	text := textContent(t, result)
	assert.Contains(t, text, "retailing-benchmark")

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &entries))
	require.GreaterOrEqual(t, len(entries), 1)
	assert.Contains(t, entries[0], "name")
	assert.Contains(t, entries[0], "tests")
	assert.Contains(t, entries[0], "ground_truth")
	assert.Contains(t, entries[0], "scoring_prompt")
	assert.Contains(t, entries[0], "default")
}

func TestHandleListPlatforms(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	envContent := "CHATGPT_BASE_URL=https://api.openai.com/v1/responses\n" +
		"CHATGPT_API_KEY=sk-test\n" +
		"CHATGPT_MODEL=gpt-4o\n"
	require.NoError(t, os.WriteFile(envPath, []byte(envContent), 0o644))

	sc := &server.ServerContext{EnvPath: envPath}

	result, err := handleListPlatforms(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)

	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &entries))

	configured := map[string]bool{}
	for _, e := range entries {
		id, _ := e["platform_id"].(string)
		state, _ := e["configured"].(bool)
		configured[id] = state
	}
	assert.True(t, configured["CHATGPT"])
	assert.False(t, configured["GEMINI"])
	assert.False(t, configured["CLAUDE"])
}

func TestHandleRunBenchmarkUnknownDataset(t *testing.T) {
	sc := &server.ServerContext{}

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"setting": "no-such-dataset",
	}

	result, err := handleRunBenchmark(context.Background(), request, sc)
	require.NoError(t, err)
	assert.Contains(t, textContent(t, result), "failed to resolve dataset")
}

func TestHandleGetReportsMissingDir(t *testing.T) {
	sc := &server.ServerContext{ReportsDir: filepath.Join(t.TempDir(), "absent")}

	result, err := handleGetReports(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)
	assert.Equal(t, "[]", textContent(t, result))
}

func TestHandleGetReportsListsAndReads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test_report_20240101_120000.xlsx")
	rows := []tabular.Row{{"scenario_id": "Q001", "model_response": "hello"}}
	require.NoError(t, tabular.Write(path, []string{"scenario_id", "model_response"}, rows))

	sc := &server.ServerContext{ReportsDir: dir}

	result, err := handleGetReports(context.Background(), mcp.CallToolRequest{}, sc)
	require.NoError(t, err)

	var listed []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "test_report_20240101_120000.xlsx", listed[0]["name"])

	request := mcp.CallToolRequest{}
	request.Params.Arguments = map[string]interface{}{
		"report": "test_report_20240101_120000.xlsx",
	}
	result, err = handleGetReports(context.Background(), request, sc)
	require.NoError(t, err)

	var report map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(textContent(t, result)), &report))
	assert.Equal(t, []interface{}{"scenario_id", "model_response"}, report["columns"])
}

func TestResolveReportPathRejectsTraversal(t *testing.T) {
	_, err := resolveReportPath("reports", "../secret.xlsx")
	assert.Error(t, err)

	_, err = resolveReportPath("reports", "..")
	assert.Error(t, err)

	_, err = resolveReportPath("reports", "")
	assert.Error(t, err)

	path, err := resolveReportPath("reports", "report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("reports", "report.xlsx"), path)
}
