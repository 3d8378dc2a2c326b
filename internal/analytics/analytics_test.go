package analytics

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lgpsreport/pkg/contracts/domain"
)

func testTable() *domain.PivotTable {
	return &domain.PivotTable{
		EntityColumn: domain.DefaultEntityColumn,
		Metrics:      []string{"Base Value", "Shares/Par"},
		Rows: []domain.PivotRow{
			{Entity: "UK Listed Equity-Fund", Cells: map[string]domain.NumericValue{
				"Base Value": domain.Number(1500000.10), "Shares/Par": domain.Number(12000),
			}},
			{Entity: "Global Bond-Report", Cells: map[string]domain.NumericValue{
				"Base Value": domain.Number(500000.20),
			}},
			{Entity: "Emerging Markets Equity-Report", Cells: map[string]domain.NumericValue{
				"Base Value": domain.Missing, "Shares/Par": domain.Number(3),
			}},
			{Entity: "Private-Markets-Report", Cells: map[string]domain.NumericValue{}},
		},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(testTable(), "Base Value")

	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 2, s.Missing, "N/A and absent cells are both missing")
	assert.True(t, decimal.RequireFromString("2000000.3").Equal(s.Sum), "sum %s", s.Sum)
	assert.InDelta(t, 1000000.15, s.Mean, 1e-6)
	assert.InDelta(t, 499999.95*499999.95, s.Variance, 1e-3)
	assert.Equal(t, 500000.20, s.Min)
	assert.Equal(t, 1500000.10, s.Max)
}

func TestSummarizeEdgeCases(t *testing.T) {
	t.Run("nil table", func(t *testing.T) {
		s := Summarize(nil, "Base Value")
		assert.Zero(t, s.Count)
		assert.True(t, s.Sum.IsZero())
	})

	t.Run("unknown metric", func(t *testing.T) {
		s := Summarize(testTable(), "Nope")
		assert.Zero(t, s.Count)
		assert.Equal(t, 4, s.Missing)
		assert.Zero(t, s.Mean)
	})

	t.Run("partially reported column", func(t *testing.T) {
		s := Summarize(testTable(), "Shares/Par")
		assert.Equal(t, 2, s.Count)
		assert.InDelta(t, 6001.5, s.Mean, 1e-9)
	})
}

func TestSummarizeAll(t *testing.T) {
	all := SummarizeAll(testTable())
	require.Len(t, all, 2)
	assert.Equal(t, "Base Value", all[0].Metric)
	assert.Equal(t, "Shares/Par", all[1].Metric)
	assert.Nil(t, SummarizeAll(nil))
}

func TestClassifiers(t *testing.T) {
	tests := []struct {
		entity     string
		asset      string
		investment string
		sector     string
	}{
		{"UK Listed Equity-Fund", AssetPublicStocks, InvestmentIndirect, AssetPublicStocks},
		{"Global Bond-Report", AssetBonds, InvestmentDirect, SectorGlobalEquities},
		{"Emerging Markets Equity-Report", AssetPublicStocks, InvestmentDirect, SectorEmergingMarkets},
		{"Private-Markets-Report", AssetPrivateEquity, InvestmentDirect, AssetPrivateEquity},
		{"Alternatives-Fund", AssetAlternatives, InvestmentIndirect, GroupOther},
		{"Multi-Asset Credit-Report", AssetBonds, InvestmentDirect, AssetBonds},
		{"Multi-Asset-Report", AssetMultiAsset, InvestmentDirect, GroupOther},
		{"Cash-Report", GroupOther, InvestmentDirect, GroupOther},
	}

	for _, tt := range tests {
		t.Run(tt.entity, func(t *testing.T) {
			assert.Equal(t, tt.asset, ClassifyAssetClass(tt.entity))
			assert.Equal(t, tt.investment, ClassifyInvestmentType(tt.entity))
			assert.Equal(t, tt.sector, ClassifySector(tt.entity))
		})
	}
}

func TestBreakdown(t *testing.T) {
	groups := Breakdown(testTable(), "Base Value", ClassifyAssetClass)

	require.Len(t, groups, 3)
	assert.Equal(t, AssetBonds, groups[0].Name)
	assert.Equal(t, AssetPrivateEquity, groups[1].Name)
	assert.True(t, groups[1].Total.IsZero())
	assert.Equal(t, 1, groups[1].Entities)
	assert.Equal(t, AssetPublicStocks, groups[2].Name)
	assert.Equal(t, 2, groups[2].Entities)
	assert.True(t, decimal.RequireFromString("1500000.1").Equal(groups[2].Total))

	assert.Nil(t, Breakdown(nil, "Base Value", ClassifySector))
}

func TestNewOverview(t *testing.T) {
	o := NewOverview(testTable(), "Base Value")

	assert.Equal(t, 4, o.Funds)
	assert.True(t, decimal.RequireFromString("2000000.3").Equal(o.Total))
	assert.True(t, decimal.RequireFromString("1500000.1").Equal(o.UKExposure))
	assert.Len(t, o.InvestmentTypes, 2)
	assert.NotEmpty(t, o.Sectors)

	empty := NewOverview(&domain.PivotTable{}, "Base Value")
	assert.Zero(t, empty.Funds)
	assert.True(t, empty.Total.IsZero())
}

func TestSummarizer(t *testing.T) {
	s := NewSummarizer(slog.New(slog.NewJSONHandler(io.Discard, nil)), SummarizerConfig{})
	assert.Equal(t, "Base Value", s.BaseValueMetric())

	summary := s.Summarize(context.Background(), testTable())
	assert.Equal(t, 4, summary.Overview.Funds)
	assert.Len(t, summary.Metrics, 2)

	custom := NewSummarizer(nil, SummarizerConfig{BaseValueMetric: "Shares/Par"})
	summary = custom.Summarize(context.Background(), testTable())
	assert.True(t, decimal.NewFromInt(12003).Equal(summary.Overview.Total))
}
