package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lgpsreport/internal/config"
	"lgpsreport/internal/exporter"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{
			name: "defaults",
			want: options{mode: modeReconstruct},
		},
		{
			name: "compile with filter",
			args: []string{"-mode", "compile", "-in", "in", "-out", "out", "-filter", "fund,report", "-dry-run"},
			want: options{mode: modeCompile, in: "in", out: "out", filter: "fund,report", dryRun: true},
		},
		{
			name: "formats",
			args: []string{"-formats", "csv, md"},
			want: options{mode: modeReconstruct, formats: "csv, md"},
		},
		{
			name:    "unknown mode",
			args:    []string{"-mode", "scrape"},
			wantErr: true,
		},
		{
			name:    "unknown format",
			args:    []string{"-formats", "csv,pdf"},
			wantErr: true,
		},
		{
			name:    "unknown flag",
			args:    []string{"-license"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, io.Discard)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b,"))
	assert.Nil(t, splitList(""))
}

func testConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.BaseDir = base
	raw := filepath.Join(base, "raw")
	cfg.Paths.RawDir = raw
	require.NoError(t, os.MkdirAll(raw, 0755))
	return cfg, raw
}

func TestRunReconstruct(t *testing.T) {
	cfg, raw := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(raw, "a.txt"), []byte("Fund A-Report\n2023\nBase Value\n1,000"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(raw, "b.txt"), []byte("Fund Name\nMarket"), 0644))
	out := filepath.Join(t.TempDir(), "reports")

	var stdout bytes.Buffer
	err := run(context.Background(), cfg, options{mode: modeReconstruct, out: out, formats: "csv"}, discardLogger(), &stdout)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, config.ReconstructedReportBase+".csv"))
	assert.Contains(t, stdout.String(), "completed")
	assert.Contains(t, stdout.String(), "skipped b.txt")
}

func TestRunFilterDeletesUnwanted(t *testing.T) {
	cfg, raw := testConfig(t)
	keep := filepath.Join(raw, "Fund A-Report.pdf")
	drop := filepath.Join(raw, "minutes.pdf")
	for _, p := range []string{keep, drop} {
		require.NoError(t, os.WriteFile(p, []byte("x"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(raw, "a.txt"), []byte("Fund A-Report\n2023\nBase Value\n1"), 0644))

	var stdout bytes.Buffer
	err := run(context.Background(), cfg, options{mode: modeReconstruct, filter: "report", formats: "md"}, discardLogger(), &stdout)
	require.NoError(t, err)

	assert.FileExists(t, keep)
	assert.NoFileExists(t, drop)
	assert.Contains(t, stdout.String(), "removed minutes.pdf")
}

func TestRunCompile(t *testing.T) {
	cfg, raw := testConfig(t)
	save := func(name string, rows [][]string) {
		b := exporter.NewDocxBuilder().Heading("Analysis Report", 1).Table(rows, false)
		require.NoError(t, b.Save(filepath.Join(raw, name)))
	}
	save("UK Equity-Fund-2023"+config.AnalysisReportSuffix, [][]string{{"Base Value", "1,500"}, {"Shares/Par", "12"}})
	save("Bonds-2024"+config.AnalysisReportSuffix, [][]string{{"Base Value", "9"}})

	var stdout bytes.Buffer
	err := run(context.Background(), cfg, options{mode: modeCompile}, discardLogger(), &stdout)
	require.NoError(t, err)

	compiled := filepath.Join(cfg.Paths.BaseDir, config.DefaultCompiledDir)
	assert.FileExists(t, filepath.Join(compiled, config.CompiledReportFile))
	assert.FileExists(t, filepath.Join(compiled, config.CompiledWorkbookFile))
	assert.Contains(t, stdout.String(), "compiled 2 records from 1 documents")
	assert.Contains(t, stdout.String(), "skipped Bonds-2024")
}

func TestRunCompileWithoutReports(t *testing.T) {
	cfg, _ := testConfig(t)

	err := run(context.Background(), cfg, options{mode: modeCompile}, discardLogger(), io.Discard)
	require.Error(t, err)
}

func TestRunMissingInput(t *testing.T) {
	cfg, _ := testConfig(t)
	missing := filepath.Join(t.TempDir(), "nope", "file.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(missing), 0755))
	require.NoError(t, os.WriteFile(missing, []byte("x"), 0644))

	err := run(context.Background(), cfg, options{mode: modeReconstruct, in: missing}, discardLogger(), io.Discard)
	require.Error(t, err)
}
