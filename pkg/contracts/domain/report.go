package domain

import "time"

// ReconstructionDiagnostics counts everything the reconstruction dropped or
// discarded. None of these conditions is an error; they are surfaced so that
// callers can judge the quality of a best-effort parse.
type ReconstructionDiagnostics struct {
	InputLines          int  `json:"input_lines"`
	LabelLinesRemoved   int  `json:"label_lines_removed"`
	HeadersBound        int  `json:"headers_bound"`
	RepeatedHeaders     int  `json:"repeated_headers"`
	DroppedPairs        int  `json:"dropped_pairs"`
	OddTail             bool `json:"odd_tail"`
	Records             int  `json:"records"`
	DiscardedDuplicates int  `json:"discarded_duplicates"`
	UnparseableValues   int  `json:"unparseable_values"`
}

// DocumentReport is the outcome of processing one source document.
type DocumentReport struct {
	Source      string                    `json:"source"`
	Table       *PivotTable               `json:"table,omitempty"`
	Records     []FlatRecord              `json:"records,omitempty"`
	Diagnostics ReconstructionDiagnostics `json:"diagnostics"`
	Skipped     bool                      `json:"skipped"`
	SkipReason  string                    `json:"skip_reason,omitempty"`
	ProcessedAt time.Time                 `json:"processed_at"`
}
