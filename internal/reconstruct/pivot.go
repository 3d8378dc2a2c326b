package reconstruct

import (
	"lgpsreport/pkg/contracts/domain"
)

// PivotStats counts what the pivot discarded.
type PivotStats struct {
	Entities            int
	Metrics             int
	DiscardedDuplicates int
}

// orderedSet keeps string keys in insertion order.
type orderedSet struct {
	index map[string]int
	keys  []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: make(map[string]int)}
}

// add inserts key if absent and returns its position.
func (s *orderedSet) add(key string) int {
	if pos, ok := s.index[key]; ok {
		return pos
	}
	s.index[key] = len(s.keys)
	s.keys = append(s.keys, key)
	return len(s.keys) - 1
}

// Pivoter reshapes flat records into a wide table.
type Pivoter struct {
	EntityColumn string
}

// NewPivoter creates a pivoter whose first column is named entityColumn.
func NewPivoter(entityColumn string) *Pivoter {
	if entityColumn == "" {
		entityColumn = domain.DefaultEntityColumn
	}
	return &Pivoter{EntityColumn: entityColumn}
}

// Pivot groups records by entity. Columns are the union of all metric names
// in first-seen order; rows follow the first appearance of each entity. The
// first record for an (entity, metric) pair wins and later ones are
// discarded, including when the winner's value is unparseable.
func (p *Pivoter) Pivot(records []domain.FlatRecord) (*domain.PivotTable, PivotStats) {
	entities := newOrderedSet()
	metrics := newOrderedSet()
	var rows []domain.PivotRow
	var stats PivotStats

	for _, rec := range records {
		pos := entities.add(rec.Entity)
		if pos == len(rows) {
			rows = append(rows, domain.PivotRow{
				Entity:   rec.Entity,
				Category: rec.Category,
				Cells:    make(map[string]domain.NumericValue),
			})
		}
		metrics.add(rec.Metric)

		row := &rows[pos]
		if _, seen := row.Cells[rec.Metric]; seen {
			stats.DiscardedDuplicates++
			continue
		}
		row.Cells[rec.Metric] = rec.Numeric
	}

	stats.Entities = len(rows)
	stats.Metrics = len(metrics.keys)
	return &domain.PivotTable{
		EntityColumn: p.EntityColumn,
		Metrics:      metrics.keys,
		Rows:         rows,
	}, stats
}

// Pivot reshapes records with the default entity column name.
func Pivot(records []domain.FlatRecord) *domain.PivotTable {
	table, _ := NewPivoter("").Pivot(records)
	return table
}
