package tabular

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steps.xlsx")

	columns := []string{"scenario_id", "platform_id", "user_prompt"}
	rows := []Row{
		{"scenario_id": "Q001", "platform_id": "CLAUDE", "user_prompt": "Find a 55\" TV"},
		{"scenario_id": "Q002", "platform_id": "GEMINI", "user_prompt": "Čeština & 日本語 round-trip"},
	}

	require.NoError(t, Write(path, columns, rows))

	table, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, columns, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Find a 55\" TV", table.Rows[0]["user_prompt"])
	assert.Equal(t, "Čeština & 日本語 round-trip", table.Rows[1]["user_prompt"])
}

func TestWriteFillsMissingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparse.xlsx")

	columns := []string{"a", "b", "c"}
	rows := []Row{{"a": "1", "c": "3"}}

	require.NoError(t, Write(path, columns, rows))

	table, err := Load(path)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "1", table.Rows[0]["a"])
	assert.Equal(t, "", table.Rows[0]["b"])
	assert.Equal(t, "3", table.Rows[0]["c"])
}

func TestLoadEmptySheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, Write(path, nil, nil))

	table, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, table.Columns)
	assert.Empty(t, table.Rows)
}
