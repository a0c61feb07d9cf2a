// Package groundtruth loads the product reference data the scoring platform
// judges responses against.
package groundtruth

import (
	"strings"

	"github.com/commercelab/shopbench/internal/tabular"
)

const skuColumn = "sku_id"

// Load reads a ground truth sheet and returns sku_id mapped to the row's
// remaining non-empty attribute values joined with ", " in column order.
// Rows without a sku_id are skipped.
func Load(path string) (map[string]string, error) {
	table, err := tabular.Load(path)
	if err != nil {
		return nil, err
	}

	truth := make(map[string]string, len(table.Rows))
	for _, row := range table.Rows {
		skuID := strings.TrimSpace(row[skuColumn])
		if skuID == "" {
			continue
		}
		var values []string
		for _, column := range table.Columns {
			if column == skuColumn {
				continue
			}
			value := strings.TrimSpace(row[column])
			if value == "" {
				continue
			}
			values = append(values, value)
		}
		truth[skuID] = strings.Join(values, ", ")
	}
	return truth, nil
}
