package analytics

import (
	"github.com/shopspring/decimal"

	"lgpsreport/pkg/contracts/domain"
)

// MetricSummary describes one column of a wide table. Only valid cells take
// part; empty and unparseable cells are counted in Missing.
type MetricSummary struct {
	Metric   string          `json:"metric"`
	Count    int             `json:"count"`
	Missing  int             `json:"missing"`
	Sum      decimal.Decimal `json:"sum"`
	Mean     float64         `json:"mean"`
	Variance float64         `json:"variance"`
	Min      float64         `json:"min"`
	Max      float64         `json:"max"`
}

// Summarize returns the statistics of metric across all rows of table.
// Variance is the population variance. A metric without valid cells has a
// zero Count and zero statistics.
func Summarize(table *domain.PivotTable, metric string) MetricSummary {
	s := MetricSummary{Metric: metric, Sum: decimal.Zero}
	if table.Empty() {
		return s
	}

	var values []decimal.Decimal
	for _, v := range table.Column(metric) {
		if !v.Valid {
			s.Missing++
			continue
		}
		if len(values) == 0 || v.Value < s.Min {
			s.Min = v.Value
		}
		if len(values) == 0 || v.Value > s.Max {
			s.Max = v.Value
		}
		d := decimal.NewFromFloat(v.Value)
		values = append(values, d)
		s.Sum = s.Sum.Add(d)
	}

	s.Count = len(values)
	if s.Count == 0 {
		return s
	}

	n := decimal.NewFromInt(int64(s.Count))
	mean := s.Sum.Div(n)
	squares := decimal.Zero
	for _, d := range values {
		diff := d.Sub(mean)
		squares = squares.Add(diff.Mul(diff))
	}
	s.Mean = mean.InexactFloat64()
	s.Variance = squares.Div(n).InexactFloat64()
	return s
}

// SummarizeAll summarizes every metric of table in column order.
func SummarizeAll(table *domain.PivotTable) []MetricSummary {
	if table == nil {
		return nil
	}
	out := make([]MetricSummary, 0, len(table.Metrics))
	for _, m := range table.Metrics {
		out = append(out, Summarize(table, m))
	}
	return out
}

// Total sums the valid cells of metric over the rows accepted by keep. A nil
// keep accepts every row.
func Total(table *domain.PivotTable, metric string, keep func(domain.PivotRow) bool) decimal.Decimal {
	total := decimal.Zero
	if table.Empty() {
		return total
	}
	for _, row := range table.Rows {
		if keep != nil && !keep(row) {
			continue
		}
		if v, ok := row.Cell(metric); ok && v.Valid {
			total = total.Add(decimal.NewFromFloat(v.Value))
		}
	}
	return total
}
