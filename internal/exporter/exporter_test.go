package exporter

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"lgpsreport/internal/config"
	"lgpsreport/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	paths, err := config.ResolvePaths(config.PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return paths
}

func strptr(s string) *string { return &s }

func sampleTable() *domain.PivotTable {
	return &domain.PivotTable{
		EntityColumn: domain.DefaultEntityColumn,
		Metrics:      []string{"Base Value", "Shares/Par"},
		Rows: []domain.PivotRow{
			{Entity: "UK Listed Equity-Fund", Category: strptr("2023"), Cells: map[string]domain.NumericValue{
				"Base Value": domain.Number(1500000.5), "Shares/Par": domain.Number(12000),
			}},
			{Entity: "Emerging Markets-Report", Category: strptr("2024"), Cells: map[string]domain.NumericValue{
				"Base Value": domain.Missing,
			}},
		},
	}
}

func sampleRecords() []domain.FlatRecord {
	return []domain.FlatRecord{
		{Entity: "UK Listed Equity-Fund", Category: strptr("2023"), Metric: "Base Value", Value: "1,500,000.50", Numeric: domain.Number(1500000.5)},
		{Entity: "UK Listed Equity-Fund", Category: strptr("2023"), Metric: "Shares/Par", Value: "12,000", Numeric: domain.Number(12000)},
		{Entity: "Emerging Markets-Report", Category: strptr("2024"), Metric: "Base Value", Value: "N/A", Numeric: domain.Missing},
	}
}
