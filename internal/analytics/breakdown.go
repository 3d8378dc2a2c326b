package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"lgpsreport/pkg/contracts/domain"
)

// Group is the total of one metric over the entities sharing a label.
type Group struct {
	Name     string          `json:"name"`
	Total    decimal.Decimal `json:"total"`
	Entities int             `json:"entities"`
}

// Breakdown groups the rows of table by classify and sums metric per group.
// Groups are sorted by name. Rows without a valid value still count towards
// their group's entities but add nothing to its total.
func Breakdown(table *domain.PivotTable, metric string, classify Classifier) []Group {
	if table.Empty() {
		return nil
	}

	index := map[string]int{}
	var groups []Group
	for _, row := range table.Rows {
		name := classify(row.Entity)
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Name: name, Total: decimal.Zero})
		}
		groups[i].Entities++
		if v, ok := row.Cell(metric); ok && v.Valid {
			groups[i].Total = groups[i].Total.Add(decimal.NewFromFloat(v.Value))
		}
	}

	sort.Slice(groups, func(a, b int) bool { return groups[a].Name < groups[b].Name })
	return groups
}

// Overview is the headline summary of a reconstructed table.
type Overview struct {
	Metric          string          `json:"metric"`
	Funds           int             `json:"funds"`
	Total           decimal.Decimal `json:"total"`
	UKExposure      decimal.Decimal `json:"uk_exposure"`
	AssetClasses    []Group         `json:"asset_classes"`
	InvestmentTypes []Group         `json:"investment_types"`
	Sectors         []Group         `json:"sectors"`
}

// NewOverview computes the total of metric, the part held in UK funds and
// the three keyword breakdowns.
func NewOverview(table *domain.PivotTable, metric string) Overview {
	o := Overview{
		Metric:     metric,
		Total:      Total(table, metric, nil),
		UKExposure: Total(table, metric, func(r domain.PivotRow) bool { return IsUK(r.Entity) }),
	}
	if table.Empty() {
		return o
	}
	o.Funds = len(table.Rows)
	o.AssetClasses = Breakdown(table, metric, ClassifyAssetClass)
	o.InvestmentTypes = Breakdown(table, metric, ClassifyInvestmentType)
	o.Sectors = Breakdown(table, metric, ClassifySector)
	return o
}
