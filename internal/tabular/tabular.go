// Package tabular reads and writes the XLSX files the benchmark runs on:
// test step sheets, ground truth sheets and the progress report.
package tabular

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReportSheetName is the worksheet name used for written reports.
const ReportSheetName = "Report"

// Row is a single spreadsheet row keyed by column header.
type Row map[string]string

// Table holds the rows of a worksheet together with the header order.
type Table struct {
	Columns []string
	Rows    []Row
}

// Load reads the first worksheet of an XLSX file. The first row is treated
// as the header; empty header cells are skipped.
func Load(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no worksheets found in %s", path)
	}

	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read worksheet %q: %w", sheets[0], err)
	}
	if len(raw) == 0 {
		return &Table{}, nil
	}

	var columns []string
	for _, name := range raw[0] {
		name = strings.TrimSpace(name)
		if name != "" {
			columns = append(columns, name)
		}
	}

	table := &Table{Columns: columns}
	for _, cells := range raw[1:] {
		row := make(Row, len(columns))
		col := 0
		for _, name := range raw[0] {
			if strings.TrimSpace(name) == "" {
				col++
				continue
			}
			value := ""
			if col < len(cells) {
				value = cells[col]
			}
			row[strings.TrimSpace(name)] = value
			col++
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// Write writes rows to a single-sheet XLSX file with the given column order.
// Missing row values are written as empty cells, so repeated writes with the
// same inputs produce identical files.
func Write(path string, columns []string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), ReportSheetName); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, name := range columns {
		header[i] = name
	}
	if err := f.SetSheetRow(ReportSheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		values := make([]interface{}, len(columns))
		for j, name := range columns {
			values[j] = row[name]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(ReportSheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
