package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lgpsreport/internal/config"
	apperrors "lgpsreport/internal/errors"
	"lgpsreport/pkg/contracts/domain"
)

// ReportWriter writes a Report in every requested format.
type ReportWriter struct {
	paths  *config.Paths
	csv    *CSVWriter
	xlsx   *XLSXWriter
	logger *slog.Logger
}

// NewReportWriter creates a report writer for the configured directories.
func NewReportWriter(paths *config.Paths, logger *slog.Logger) *ReportWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportWriter{
		paths:  paths,
		csv:    NewCSVWriter(paths, logger),
		xlsx:   NewXLSXWriter(paths, logger),
		logger: logger.With(slog.String("component", "report_writer")),
	}
}

// Write renders report in each of formats to base plus the format's
// extension and returns the files written. A relative base is placed in the
// reports directory.
func (w *ReportWriter) Write(ctx context.Context, base string, formats []string, report Report, records []domain.FlatRecord) ([]string, error) {
	base = resolveReportPath(w.paths, base)

	var written []string
	var markdown string
	for _, format := range formats {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		format = strings.ToLower(format)
		path := base + "." + format

		var err error
		switch format {
		case config.FormatCSV:
			err = w.csv.WritePivot(path, report.Table)
		case config.FormatXLSX:
			err = w.xlsx.WriteWorkbook(path, report.Table, records, report.BaseValueMetric)
		case config.FormatMarkdown:
			if markdown == "" {
				markdown = report.Markdown()
			}
			err = writeFile(path, []byte(markdown))
		case config.FormatHTML:
			if markdown == "" {
				markdown = report.Markdown()
			}
			var page []byte
			page, err = RenderHTML(report.Title, []byte(markdown))
			if err == nil {
				err = writeFile(path, page)
			}
		case config.FormatDOCX:
			err = report.Docx().Save(path)
		default:
			err = fmt.Errorf("unsupported report format %q", format)
		}
		if err != nil {
			return written, apperrors.NewStorageError("write "+format+" report", err).WithContext("path", path)
		}
		written = append(written, path)
	}

	w.logger.InfoContext(ctx, "Reports written",
		slog.String("base", base),
		slog.Any("files", written))
	return written, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
