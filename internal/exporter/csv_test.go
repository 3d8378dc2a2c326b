package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM), "missing UTF-8 BOM")
	rows, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestCSVWriter_WritePivot(t *testing.T) {
	paths := testPaths(t)
	w := NewCSVWriter(paths, discardLogger())

	require.NoError(t, w.WritePivot("organized.csv", sampleTable()))

	rows := readCSV(t, filepath.Join(paths.ReportsDir, "organized.csv"))
	assert.Equal(t, [][]string{
		{"Fund", "Base Value", "Shares/Par"},
		{"UK Listed Equity-Fund", "1500000.5", "12000"},
		{"Emerging Markets-Report", "", ""},
	}, rows)

	assert.Error(t, w.WritePivot("nil.csv", nil))
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	tests := []struct {
		name    string
		options WriteOptions
		want    string
	}{
		{
			name:    "headers and records with BOM",
			options: WriteOptions{Headers: []string{"a", "b"}, Records: [][]string{{"1", "2"}}, BOMPrefix: true},
			want:    "\xEF\xBB\xBFa,b\n1,2\n",
		},
		{
			name:    "quotes special characters",
			options: WriteOptions{Headers: []string{"name"}, Records: [][]string{{"Fund, \"A\""}}},
			want:    "name\n\"Fund, \"\"A\"\"\"\n",
		},
		{
			name:    "no headers",
			options: WriteOptions{Records: [][]string{{"x"}}},
			want:    "x\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "out.csv")
			require.NoError(t, NewCSVWriter(nil, discardLogger()).WriteCSV(path, tt.options))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestCSVWriter_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	w := NewCSVWriter(nil, discardLogger())

	require.NoError(t, w.WriteSimpleCSV(path, []string{"h"}, [][]string{{"1"}}))
	require.NoError(t, w.WriteCSV(path, WriteOptions{Records: [][]string{{"2"}}, Append: true, BOMPrefix: true}))

	rows := readCSV(t, path)
	assert.Equal(t, [][]string{{"h"}, {"1"}, {"2"}}, rows)
}

func TestResolveReportPath(t *testing.T) {
	paths := testPaths(t)
	assert.Equal(t, filepath.Join(paths.ReportsDir, "a.csv"), resolveReportPath(paths, "a.csv"))
	assert.Equal(t, "/tmp/a.csv", resolveReportPath(paths, "/tmp/a.csv"))
	assert.Equal(t, "a.csv", resolveReportPath(nil, "a.csv"))
}
