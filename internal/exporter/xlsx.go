package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/xuri/excelize/v2"

	"lgpsreport/internal/config"
	"lgpsreport/pkg/contracts/domain"
)

// Sheet names of the reconstructed workbook.
const (
	SummarySheet  = "Summary"
	RecordsSheet  = "Records"
	CompiledSheet = "Compiled"
)

// Sheet is one worksheet: a bold header row and data rows. Cells may be
// strings, float64 or nil for an empty cell.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]any
}

// XLSXWriter writes workbooks with excelize.
type XLSXWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewXLSXWriter creates a workbook writer. Relative paths are written under
// the reports directory.
func NewXLSXWriter(paths *config.Paths, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{paths: paths, logger: logger.With(slog.String("component", "xlsx_writer"))}
}

// WriteWorkbook writes the wide table to the Summary sheet and the flat
// records to the Records sheet. When chartMetric names a column of table, a
// bar chart of that column per entity is placed beside the Summary data.
func (w *XLSXWriter) WriteWorkbook(filePath string, table *domain.PivotTable, records []domain.FlatRecord, chartMetric string) error {
	if table == nil {
		return fmt.Errorf("no table to write")
	}
	chart := func(f *excelize.File) error {
		return w.addMetricChart(f, table, chartMetric)
	}
	return w.writeSheets(filePath, chart, PivotSheet(table), RecordsSheetOf(records))
}

// WriteSheets writes sheets, in order, to a new workbook at filePath.
func (w *XLSXWriter) WriteSheets(filePath string, sheets ...Sheet) error {
	return w.writeSheets(filePath, nil, sheets...)
}

func (w *XLSXWriter) writeSheets(filePath string, decorate func(*excelize.File) error, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}
	fullPath := resolveReportPath(w.paths, filePath)

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet.Name, err)
		}
		if err := writeSheet(f, sheet, bold); err != nil {
			return err
		}
	}
	if decorate != nil {
		if err := decorate(f); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(fullPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("Wrote workbook",
		slog.String("full_path", fullPath),
		slog.Int("sheets", len(sheets)))
	return nil
}

// addMetricChart adds a clustered column chart of metric per entity to the
// Summary sheet.
func (w *XLSXWriter) addMetricChart(f *excelize.File, table *domain.PivotTable, metric string) error {
	col := slices.Index(table.Metrics, metric)
	if metric == "" || col < 0 || len(table.Rows) == 0 {
		w.logger.Info("Chart skipped, metric column absent",
			slog.String("metric", metric),
			slog.Int("rows", len(table.Rows)))
		return nil
	}

	// Entities are in column A, metrics start at column B.
	name, err := excelize.ColumnNumberToName(col + 2)
	if err != nil {
		return err
	}
	last := len(table.Rows) + 1
	anchor, err := excelize.CoordinatesToCellName(len(table.Metrics)+3, 2)
	if err != nil {
		return err
	}

	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$%s$1", SummarySheet, name),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", SummarySheet, last),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", SummarySheet, name, name, last),
		}},
		Title:  []excelize.RichTextRun{{Text: metric}},
		Legend: excelize.ChartLegend{Position: "none"},
	}
	if err := f.AddChart(SummarySheet, anchor, chart); err != nil {
		return fmt.Errorf("failed to add %s chart: %w", metric, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	header := make([]any, len(sheet.Header))
	for i, h := range sheet.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet.Name, err)
	}
	if len(header) > 0 {
		last, err := excelize.CoordinatesToCellName(len(header), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to style header of %s: %w", sheet.Name, err)
		}
		if err := f.SetColWidth(sheet.Name, "A", "A", 40); err != nil {
			return err
		}
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet.Name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, sheet.Name, err)
		}
	}
	return nil
}

// PivotSheet renders the wide table with numeric cells; missing values are
// left blank.
func PivotSheet(table *domain.PivotTable) Sheet {
	rows := make([][]any, 0, len(table.Rows))
	for _, r := range table.Rows {
		row := make([]any, 0, len(table.Metrics)+1)
		row = append(row, r.Entity)
		for _, m := range table.Metrics {
			if v, ok := r.Cell(m); ok && v.Valid {
				row = append(row, v.Value)
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}
	return Sheet{Name: SummarySheet, Header: table.Header(), Rows: rows}
}

// RecordsSheetOf renders flat records under RecordHeader.
func RecordsSheetOf(records []domain.FlatRecord) Sheet {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		var numeric any
		if r.Numeric.Valid {
			numeric = r.Numeric.Value
		}
		rows = append(rows, []any{r.Entity, r.CategoryOrEmpty(), r.Metric, r.Value, numeric})
	}
	return Sheet{Name: RecordsSheet, Header: RecordHeader, Rows: rows}
}

// CompiledSheetOf renders compiled per-fund records under CompiledHeader.
func CompiledSheetOf(records []domain.FlatRecord) Sheet {
	rows := make([][]any, 0, len(records))
	for _, r := range CompiledRows(records) {
		row := make([]any, len(r))
		for i, c := range r {
			row[i] = c
		}
		rows = append(rows, row)
	}
	return Sheet{Name: CompiledSheet, Header: CompiledHeader, Rows: rows}
}
