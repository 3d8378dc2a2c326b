package config

import "time"

// Application constants
const (
	AppName    = "LGPS Report Compiler"
	AppVersion = "1.0.0"

	// File paths (relative to the base directory)
	DefaultRawDir      = "data/raw"
	DefaultCompiledDir = "data/compiled"
	DefaultReportsDir  = "data/reports"
	DefaultLogsDir     = "logs"
	DefaultLogFile     = "logs/app.log"

	// Well-known file names
	CompiledReportFile      = "LGPS_Compiled_Financial_Report.docx"
	CompiledWorkbookFile    = "LGPS_Compiled_Financial_Report.xlsx"
	ReconstructedReportBase = "LGPS_Compiled_Financial_Report_Organized"
	AnalysisReportSuffix    = "_Analysis_Report.docx"

	// Report formats
	FormatCSV      = "csv"
	FormatXLSX     = "xlsx"
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatDOCX     = "docx"

	DefaultBaseValueMetric = "Base Value"
	DefaultReportTitle     = "LGPS Compiled Financial Report"

	// Processing
	DefaultConcurrency  = 4
	DefaultMaxBodyBytes = 10 << 20

	// Rate limiting
	DefaultRateLimit = 100
	DefaultBurstSize = 50

	// Insights
	DefaultInsightsModel   = "gemini-2.0-flash"
	DefaultInsightsTimeout = 2 * time.Minute
)

// ReportFormats lists every supported output format.
var ReportFormats = []string{FormatCSV, FormatXLSX, FormatMarkdown, FormatHTML, FormatDOCX}
