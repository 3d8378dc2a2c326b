package operations

import (
	"time"

	"lgpsreport/pkg/contracts/domain"
)

// Step identifiers
const (
	StepIDDiscover    = "discover"
	StepIDExtract     = "extract"
	StepIDReconstruct = "reconstruct"
	StepIDSummarize   = "summarize"
	StepIDExport      = "export"
)

// Step names
const (
	StepNameDiscover    = "Document Discovery"
	StepNameExtract     = "Text Extraction"
	StepNameReconstruct = "Table Reconstruction"
	StepNameSummarize   = "Summary"
	StepNameExport      = "Report Export"
)

// Keys of values passed between steps in OperationState.Context
const (
	ContextKeyInputs      = "inputs"
	ContextKeyTexts       = "texts"
	ContextKeyDocuments   = "documents"
	ContextKeyRecords     = "records"
	ContextKeyTable       = "table"
	ContextKeyDiagnostics = "diagnostics"
	ContextKeySummary     = "summary"
	ContextKeyInsights    = "insights"
	ContextKeyOutputs     = "outputs"
)

// Keys of request values in OperationState.Config
const (
	ConfigKeyInputDir   = "input_dir"
	ConfigKeyPaths      = "paths"
	ConfigKeyOutputBase = "output_base"
	ConfigKeyFormats    = "formats"
)

// Document outcomes reported to the metrics recorder.
const (
	DocumentReconstructed = "reconstructed"
	DocumentEmpty         = "empty"
	DocumentFailed        = "failed"
)

// DefaultStepTimeout bounds a single step attempt.
const DefaultStepTimeout = 10 * time.Minute

// RetryConfig defines retry behavior for steps
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// NewRetryConfig returns the default retry configuration
func NewRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// OperationRequest describes one pipeline run. Paths, when set, replaces
// directory discovery.
type OperationRequest struct {
	ID         string   `json:"id"`
	InputDir   string   `json:"input_dir,omitempty"`
	Paths      []string `json:"paths,omitempty"`
	OutputBase string   `json:"output_base,omitempty"`
	Formats    []string `json:"formats,omitempty"`
}

// OperationResponse represents the response from a operation execution
type OperationResponse struct {
	ID        string                  `json:"id"`
	Status    OperationStatusValue    `json:"status"`
	Duration  time.Duration           `json:"duration"`
	Steps     []*StepState            `json:"steps"`
	Documents []domain.DocumentReport `json:"documents,omitempty"`
	Outputs   []string                `json:"outputs,omitempty"`
	Error     string                  `json:"error,omitempty"`
}
