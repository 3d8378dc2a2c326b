// Package exporter writes reconstructed tables and their summaries.
//
// CSVWriter produces UTF-8 CSV with a BOM so spreadsheet tools detect the
// encoding. XLSXWriter produces workbooks with a Summary sheet (the wide
// table) and a Records sheet (the flat records). Report renders the
// overview, breakdowns and wide table as Markdown, HTML or Word, and
// ReportWriter writes whichever formats are enabled. DocxBuilder is a small
// Word writer used for both the compiled per-fund document and the
// organized report.
package exporter
