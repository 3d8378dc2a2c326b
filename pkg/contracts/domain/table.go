package domain

// DefaultEntityColumn is the header of the first column of a wide table.
const DefaultEntityColumn = "Fund"

// PivotRow is one entity of a wide table. A metric absent from Cells is an
// empty cell; it is never reported as zero.
type PivotRow struct {
	Entity   string                  `json:"entity"`
	Category *string                 `json:"category"`
	Cells    map[string]NumericValue `json:"cells"`
}

// Cell returns the cell for metric and whether the entity reported it.
func (r PivotRow) Cell(metric string) (NumericValue, bool) {
	v, ok := r.Cells[metric]
	return v, ok
}

// PivotTable is the wide-form table: one row per entity, one column per
// distinct metric. Metrics and Rows are both in first-seen order.
type PivotTable struct {
	EntityColumn string     `json:"entity_column"`
	Metrics      []string   `json:"metrics"`
	Rows         []PivotRow `json:"rows"`
}

// Header returns the header row: entity column followed by the metrics.
func (t *PivotTable) Header() []string {
	header := make([]string, 0, len(t.Metrics)+1)
	header = append(header, t.EntityColumn)
	return append(header, t.Metrics...)
}

// Row returns the row for entity.
func (t *PivotTable) Row(entity string) (PivotRow, bool) {
	for _, row := range t.Rows {
		if row.Entity == entity {
			return row, true
		}
	}
	return PivotRow{}, false
}

// Column returns the cells of metric in row order. Entities that did not
// report the metric yield a Missing value.
func (t *PivotTable) Column(metric string) []NumericValue {
	values := make([]NumericValue, 0, len(t.Rows))
	for _, row := range t.Rows {
		if v, ok := row.Cells[metric]; ok {
			values = append(values, v)
		} else {
			values = append(values, Missing)
		}
	}
	return values
}

// HasMetric reports whether metric is one of the table's columns.
func (t *PivotTable) HasMetric(metric string) bool {
	for _, m := range t.Metrics {
		if m == metric {
			return true
		}
	}
	return false
}

// Empty reports whether the table has no rows.
func (t *PivotTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}
