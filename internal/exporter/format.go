package exporter

import (
	"strconv"

	"lgpsreport/pkg/contracts/domain"
)

// RecordHeader is the header of flat record exports.
var RecordHeader = []string{"Fund", "Category", "Metric", "Value", "Numeric"}

// CompiledHeader is the header of the compiled per-fund table.
var CompiledHeader = []string{"Fund Name", "Market", "Metric", "Value"}

// formatFloat formats a float64 with the fewest digits that round-trip.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatValue renders a numeric cell; missing values become "".
func FormatValue(v domain.NumericValue) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Value)
}

// PivotRows renders the rows of table in header order.
func PivotRows(table *domain.PivotTable) [][]string {
	rows := make([][]string, 0, len(table.Rows))
	for _, r := range table.Rows {
		row := make([]string, 0, len(table.Metrics)+1)
		row = append(row, r.Entity)
		for _, m := range table.Metrics {
			cell, ok := r.Cell(m)
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, FormatValue(cell))
		}
		rows = append(rows, row)
	}
	return rows
}

// RecordRow renders one flat record under RecordHeader.
func RecordRow(r domain.FlatRecord) []string {
	return []string{r.Entity, r.CategoryOrEmpty(), r.Metric, r.Value, FormatValue(r.Numeric)}
}

// CompiledRows renders records as Fund Name, Market, Metric, Value rows.
func CompiledRows(records []domain.FlatRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Entity, r.CategoryOrEmpty(), r.Metric, r.Value})
	}
	return rows
}
