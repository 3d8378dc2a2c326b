package compile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"lgpsreport/internal/config"
	apperrors "lgpsreport/internal/errors"
	"lgpsreport/internal/exporter"
	"lgpsreport/internal/extract"
	"lgpsreport/pkg/contracts/domain"
)

// ParseReportFilename splits a per-fund report name into fund and market.
// The suffix is removed, the rest is split on "-", the fund is every part
// but the last two and the market is the second to last. Names with fewer
// than three parts are rejected.
func ParseReportFilename(name string) (fund, market string, ok bool) {
	base := strings.TrimSuffix(filepath.Base(name), config.AnalysisReportSuffix)
	parts := strings.Split(base, "-")
	if len(parts) < 3 {
		return "", "", false
	}
	fund = strings.TrimSpace(strings.Join(parts[:len(parts)-2], "-"))
	market = strings.TrimSpace(parts[len(parts)-2])
	return fund, market, true
}

// Skip reasons reported for documents that contribute no records.
const (
	SkipBadName  = "file name does not match <fund>-<market>-<year>"
	SkipNoTable  = "no two-column table"
	SkipNoRead   = "document could not be read"
	SkipNoValues = "two-column table is empty"
)

// Skipped is a document that contributed no records.
type Skipped struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is the outcome of a compilation run.
type Result struct {
	Records   []domain.FlatRecord `json:"records"`
	Documents int                 `json:"documents"`
	Skipped   []Skipped           `json:"skipped,omitempty"`
}

// Compiler reads per-fund reports.
type Compiler struct {
	logger *slog.Logger
	open   func(path string) (*extract.Document, error)
}

// NewCompiler creates a compiler.
func NewCompiler(logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{
		logger: logger.With(slog.String("component", "compiler")),
		open:   extract.OpenDocument,
	}
}

// Compile reads every document in paths, in order, and returns one record
// per metric row with Category set to the market. Documents that cannot
// contribute are skipped and listed in the result; Compile only fails when
// ctx is cancelled.
func (c *Compiler) Compile(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	res := &Result{}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Documents++

		records, reason := c.compileOne(ctx, path)
		if reason != "" {
			res.Skipped = append(res.Skipped, Skipped{Path: path, Reason: reason})
			c.logger.WarnContext(ctx, "skipping document",
				slog.String("path", path),
				slog.String("reason", reason))
			continue
		}
		res.Records = append(res.Records, records...)
	}

	c.logger.InfoContext(ctx, "compilation finished",
		slog.Int("documents", res.Documents),
		slog.Int("skipped", len(res.Skipped)),
		slog.Int("records", len(res.Records)),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}

func (c *Compiler) compileOne(ctx context.Context, path string) ([]domain.FlatRecord, string) {
	fund, market, ok := ParseReportFilename(path)
	if !ok {
		return nil, SkipBadName
	}

	doc, err := c.open(path)
	if err != nil {
		c.logger.DebugContext(ctx, "open failed", slog.String("path", path), slog.String("error", err.Error()))
		return nil, SkipNoRead
	}

	table, found := firstTwoColumnTable(doc)
	if !found {
		return nil, SkipNoTable
	}

	records := make([]domain.FlatRecord, 0, len(table))
	for _, row := range table {
		metric, value := cell(row, 0), cell(row, 1)
		if metric == "" && value == "" {
			continue
		}
		m := market
		records = append(records, domain.FlatRecord{
			Entity:   fund,
			Category: &m,
			Metric:   metric,
			Value:    value,
		})
	}
	if len(records) == 0 {
		return nil, SkipNoValues
	}
	return records, ""
}

// firstTwoColumnTable returns the first table whose widest row has exactly
// two cells.
func firstTwoColumnTable(doc *extract.Document) (extract.Table, bool) {
	for _, t := range doc.Tables {
		if t.Width() == 2 {
			return t, true
		}
	}
	return nil, false
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// WriteDocument writes the compiled Word document: a title heading and one
// Fund Name, Market, Metric, Value table.
func WriteDocument(path, title string, records []domain.FlatRecord) error {
	if len(records) == 0 {
		return apperrors.NewEmptyResultError(path, fmt.Errorf("no records to compile"))
	}
	rows := append([][]string{exporter.CompiledHeader}, exporter.CompiledRows(records)...)
	return exporter.NewDocxBuilder().
		Heading(title, 1).
		Table(rows, true).
		Save(path)
}
