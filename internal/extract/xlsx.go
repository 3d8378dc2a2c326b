package extract

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXExtractor reads every sheet of a workbook in sheet order, row-major.
type XLSXExtractor struct{}

// Extract implements Extractor.
func (XLSXExtractor) Extract(ctx context.Context, path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var raw []string
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			raw = append(raw, row...)
		}
	}
	return CleanLines(raw), nil
}
