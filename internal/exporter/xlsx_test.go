package exporter

import (
	"archive/zip"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXWriter_WriteWorkbook(t *testing.T) {
	paths := testPaths(t)
	w := NewXLSXWriter(paths, discardLogger())

	require.NoError(t, w.WriteWorkbook("organized.xlsx", sampleTable(), sampleRecords(), "Base Value"))

	f, err := excelize.OpenFile(filepath.Join(paths.ReportsDir, "organized.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, RecordsSheet}, f.GetSheetList())

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"Fund", "Base Value", "Shares/Par"}, summary[0])
	assert.Equal(t, "UK Listed Equity-Fund", summary[1][0])
	assert.Equal(t, "12000", summary[1][2])
	assert.Equal(t, []string{"Emerging Markets-Report"}, summary[2], "missing cells are left blank")

	records, err := f.GetRows(RecordsSheet)
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, RecordHeader, records[0])
	assert.Equal(t, []string{"Emerging Markets-Report", "2024", "Base Value", "N/A"}, records[3])
}

func hasChart(t *testing.T, path string) bool {
	t.Helper()
	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name == "xl/charts/chart1.xml" {
			return true
		}
	}
	return false
}

func TestXLSXWriter_BaseValueChart(t *testing.T) {
	tests := []struct {
		name   string
		metric string
		want   bool
	}{
		{name: "base value column charted", metric: "Base Value", want: true},
		{name: "other column charted", metric: "Shares/Par", want: true},
		{name: "absent column skipped", metric: "Market Value", want: false},
		{name: "no metric skipped", metric: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "chart.xlsx")
			w := NewXLSXWriter(nil, discardLogger())
			require.NoError(t, w.WriteWorkbook(path, sampleTable(), sampleRecords(), tt.metric))
			assert.Equal(t, tt.want, hasChart(t, path))

			f, err := excelize.OpenFile(path)
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, []string{SummarySheet, RecordsSheet}, f.GetSheetList())
		})
	}
}

func TestXLSXWriter_WriteSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "compiled.xlsx")
	w := NewXLSXWriter(nil, nil)

	require.NoError(t, w.WriteSheets(path, CompiledSheetOf(sampleRecords())))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(CompiledSheet)
	require.NoError(t, err)
	assert.Equal(t, CompiledHeader, rows[0])
	assert.Equal(t, []string{"UK Listed Equity-Fund", "2023", "Shares/Par", "12,000"}, rows[2])

	assert.Error(t, w.WriteSheets(path))
	assert.Error(t, w.WriteWorkbook(path, nil, nil, ""))
}
