package exporter

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lgpsreport/internal/analytics"
)

func sampleReport() Report {
	table := sampleTable()
	return Report{
		Title:           "LGPS Compiled Financial Report",
		Sources:         []string{"a.docx"},
		GeneratedAt:     time.Date(2024, 4, 1, 9, 30, 0, 0, time.UTC),
		Currency:        "GBP",
		BaseValueMetric: "Base Value",
		Table:           table,
		Summary: analytics.Summary{
			Overview: analytics.NewOverview(table, "Base Value"),
			Metrics:  analytics.SummarizeAll(table),
		},
		Skipped:  []string{"empty|name.docx"},
		Insights: "Holdings are concentrated in UK equity.",
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"1500000.5", "GBP", "£1,500,000.50"},
		{"0", "GBP", "£0.00"},
		{"12.345", "GBP", "£12.35"},
		{"10", "XXX1", "XXX1 10.00"},
	}

	for _, tt := range tests {
		t.Run(tt.amount+tt.currency, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(decimal.RequireFromString(tt.amount), tt.currency))
		})
	}
}

func TestReportMarkdown(t *testing.T) {
	md := sampleReport().Markdown()

	assert.True(t, strings.HasPrefix(md, "# LGPS Compiled Financial Report\n"))
	assert.Contains(t, md, "Generated 2024-04-01 09:30 UTC from 1 source document(s).")
	assert.Contains(t, md, "- Total Assets Invested: £1,500,000.50")
	assert.Contains(t, md, "- UK Investment Exposure: £1,500,000.50")
	assert.Contains(t, md, "| Asset Class | Total Base Value (GBP) | Funds |")
	assert.Contains(t, md, "| Fund | Base Value | Shares/Par |")
	assert.Contains(t, md, "| Emerging Markets-Report |  |  |")
	assert.Contains(t, md, `- empty\|name.docx`)
	assert.Contains(t, md, "## Insights\n\nHoldings are concentrated in UK equity.")
}

func TestReportMarkdownEmptyTable(t *testing.T) {
	md := Report{Title: "Empty", Currency: "GBP"}.Markdown()

	assert.Contains(t, md, "- Funds: 0")
	assert.NotContains(t, md, "## Fund Holdings")
	assert.NotContains(t, md, "## Insights")
}

func TestRenderHTML(t *testing.T) {
	page, err := RenderHTML("A <title>", []byte(sampleReport().Markdown()))
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "<title>A &lt;title&gt;</title>")
	assert.Contains(t, html, "<h2>Summary Overview</h2>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>UK Listed Equity-Fund</td>")
}
