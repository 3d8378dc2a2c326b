package exporter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"lgpsreport/internal/analytics"
	"lgpsreport/pkg/contracts/domain"
)

// Report is everything rendered into the human-readable report formats.
type Report struct {
	Title       string
	Sources     []string
	GeneratedAt time.Time
	Currency    string
	// BaseValueMetric is the column charted in workbook output.
	BaseValueMetric string
	Table           *domain.PivotTable
	Summary         analytics.Summary
	Diagnostics     domain.ReconstructionDiagnostics
	Skipped         []string
	Insights        string
}

// FormatMoney renders amount in currency using its symbol and minor units.
// Unknown currency codes fall back to the code followed by two decimals.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return strings.TrimSpace(currency + " " + amount.StringFixed(2))
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, cur.Code).Display()
}

// Markdown renders the report as GitHub-flavoured Markdown.
func (r Report) Markdown() string {
	var b strings.Builder
	metric := r.Summary.Overview.Metric

	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	if !r.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated %s", r.GeneratedAt.UTC().Format("2006-01-02 15:04 MST"))
		if len(r.Sources) > 0 {
			fmt.Fprintf(&b, " from %d source document(s)", len(r.Sources))
		}
		b.WriteString(".\n\n")
	}

	o := r.Summary.Overview
	b.WriteString("## Summary Overview\n\n")
	fmt.Fprintf(&b, "- Funds: %d\n", o.Funds)
	fmt.Fprintf(&b, "- Total Assets Invested: %s\n", FormatMoney(o.Total, r.Currency))
	fmt.Fprintf(&b, "- UK Investment Exposure: %s\n\n", FormatMoney(o.UKExposure, r.Currency))

	valueHeader := fmt.Sprintf("Total %s (%s)", metric, r.Currency)
	r.writeBreakdown(&b, "Asset Class Breakdown", "Asset Class", valueHeader, o.AssetClasses)
	r.writeBreakdown(&b, "Direct vs Indirect Investments", "Investment Type", valueHeader, o.InvestmentTypes)
	r.writeBreakdown(&b, "Sector Breakdown", "Sector", valueHeader, o.Sectors)

	if len(r.Summary.Metrics) > 0 {
		b.WriteString("## Metric Statistics\n\n")
		rows := make([][]string, 0, len(r.Summary.Metrics))
		for _, m := range r.Summary.Metrics {
			rows = append(rows, []string{
				m.Metric,
				strconv.Itoa(m.Count),
				strconv.Itoa(m.Missing),
				m.Sum.String(),
				formatFloat(m.Mean),
			})
		}
		writeMarkdownTable(&b, []string{"Metric", "Count", "Missing", "Sum", "Mean"}, rows)
	}

	if !r.Table.Empty() {
		b.WriteString("## Fund Holdings\n\n")
		writeMarkdownTable(&b, r.Table.Header(), PivotRows(r.Table))
	}

	d := r.Diagnostics
	b.WriteString("## Reconstruction Diagnostics\n\n")
	fmt.Fprintf(&b, "- Input lines: %d\n", d.InputLines)
	fmt.Fprintf(&b, "- Label lines removed: %d\n", d.LabelLinesRemoved)
	fmt.Fprintf(&b, "- Headers bound: %d (repeated: %d)\n", d.HeadersBound, d.RepeatedHeaders)
	fmt.Fprintf(&b, "- Records: %d\n", d.Records)
	fmt.Fprintf(&b, "- Pairs dropped before a header: %d\n", d.DroppedPairs)
	fmt.Fprintf(&b, "- Duplicate cells discarded: %d\n", d.DiscardedDuplicates)
	fmt.Fprintf(&b, "- Unparseable values: %d\n", d.UnparseableValues)
	if d.OddTail {
		b.WriteString("- A trailing unpaired line was ignored\n")
	}
	b.WriteString("\n")

	if len(r.Skipped) > 0 {
		b.WriteString("## Skipped Documents\n\n")
		for _, s := range r.Skipped {
			fmt.Fprintf(&b, "- %s\n", escapeMarkdown(s))
		}
		b.WriteString("\n")
	}

	if strings.TrimSpace(r.Insights) != "" {
		b.WriteString("## Insights\n\n")
		b.WriteString(strings.TrimSpace(r.Insights))
		b.WriteString("\n")
	}

	return b.String()
}

func (r Report) writeBreakdown(b *strings.Builder, title, groupHeader, valueHeader string, groups []analytics.Group) {
	if len(groups) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{g.Name, FormatMoney(g.Total, r.Currency), strconv.Itoa(g.Entities)})
	}
	writeMarkdownTable(b, []string{groupHeader, valueHeader, "Funds"}, rows)
}

func writeMarkdownTable(b *strings.Builder, header []string, rows [][]string) {
	writeMarkdownRow(b, header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeMarkdownRow(b, sep)
	for _, row := range rows {
		writeMarkdownRow(b, row)
	}
	b.WriteString("\n")
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(escapeMarkdown(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

var markdownEscaper = strings.NewReplacer("|", `\|`, "\n", " ")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// RenderHTML converts Markdown to a standalone HTML page.
func RenderHTML(title string, markdown []byte) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))

	var body bytes.Buffer
	if err := md.Convert(markdown, &body); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>")
	page.WriteString(htmlEscaper.Replace(title))
	page.WriteString("</title>\n<style>table{border-collapse:collapse}th,td{border:1px solid #ccc;padding:4px 8px}td{text-align:right}td:first-child{text-align:left}</style>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Docx renders the report as a Word document: the wide table followed by
// the overview and breakdown tables.
func (r Report) Docx() *DocxBuilder {
	doc := NewDocxBuilder().Heading(r.Title, 1)
	o := r.Summary.Overview

	if !r.Table.Empty() {
		rows := append([][]string{r.Table.Header()}, PivotRows(r.Table)...)
		doc.Table(rows, true)
	}

	doc.Heading("Summary Overview", 2).
		Paragraph("Total Assets Invested: " + FormatMoney(o.Total, r.Currency)).
		Paragraph("UK Investment Exposure: " + FormatMoney(o.UKExposure, r.Currency))

	valueHeader := fmt.Sprintf("Total %s (%s)", o.Metric, r.Currency)
	for _, section := range []struct {
		title, header string
		groups        []analytics.Group
	}{
		{"Asset Class Breakdown", "Asset Class", o.AssetClasses},
		{"Direct vs Indirect Investments", "Investment Type", o.InvestmentTypes},
		{"Sector Breakdown", "Sector", o.Sectors},
	} {
		if len(section.groups) == 0 {
			continue
		}
		rows := [][]string{{section.header, valueHeader}}
		for _, g := range section.groups {
			rows = append(rows, []string{g.Name, FormatMoney(g.Total, r.Currency)})
		}
		doc.Heading(section.title, 2).Table(rows, true)
	}

	if strings.TrimSpace(r.Insights) != "" {
		doc.Heading("Insights", 2).Paragraph(strings.TrimSpace(r.Insights))
	}
	return doc
}
