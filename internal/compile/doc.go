// Package compile merges per-fund analysis reports into a single compiled
// document.
//
// Each input is a Word file named <Fund>-<Market>-<Year>_Analysis_Report.docx
// holding a two-column metric/value table. The compiled output is a Word
// document (and optionally a workbook) with one Fund Name, Market, Metric,
// Value row per metric, which is the layout the reconstruction engine reads
// back.
package compile
