package reconstruct

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"lgpsreport/pkg/contracts/domain"
)

// ErrEmptyResult is returned by Engine.Reconstruct when no record could be
// recovered. The accompanying Result is still populated so callers can log
// its diagnostics before skipping output generation.
var ErrEmptyResult = errors.New("reconstruct: no records recovered")

// Recorder receives per-run diagnostics, typically to feed metrics.
type Recorder interface {
	RecordReconstruction(ctx context.Context, d domain.ReconstructionDiagnostics, elapsed time.Duration)
}

// Result is the outcome of one reconstruction run.
type Result struct {
	Lines       []string
	Records     []domain.FlatRecord
	Table       *domain.PivotTable
	Diagnostics domain.ReconstructionDiagnostics
}

// Options configures an Engine.
type Options struct {
	// StructuralLabels are removed before assembly; nil selects
	// DefaultStructuralLabels.
	StructuralLabels []string
	EntityColumn     string
	Classifier       Classifier
	Logger           *slog.Logger
	Recorder         Recorder
}

// Engine runs Normalize → Assemble → ParseNumeric → Pivot over one
// document's lines. An Engine holds no per-run state and may be shared.
type Engine struct {
	normalizer *Normalizer
	assembler  *Assembler
	pivoter    *Pivoter
	logger     *slog.Logger
	recorder   Recorder
}

// NewEngine creates an engine from opts.
func NewEngine(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		normalizer: NewNormalizer(opts.StructuralLabels),
		assembler:  NewAssembler(opts.Classifier),
		pivoter:    NewPivoter(opts.EntityColumn),
		logger:     logger.With(slog.String("component", "reconstruct")),
		recorder:   opts.Recorder,
	}
}

// Reconstruct rebuilds the wide table from lines, which must be in document
// order. It returns ErrEmptyResult when no record was produced; every other
// input problem is absorbed and reported through Result.Diagnostics.
func (e *Engine) Reconstruct(ctx context.Context, lines []string) (*Result, error) {
	start := time.Now()

	normalized, removed := e.normalizer.Normalize(lines)
	records, astats := e.assembler.Assemble(normalized)
	unparseable := ParseValues(records)
	table, pstats := e.pivoter.Pivot(records)

	res := &Result{
		Lines:   normalized,
		Records: records,
		Table:   table,
		Diagnostics: domain.ReconstructionDiagnostics{
			InputLines:          len(lines),
			LabelLinesRemoved:   removed,
			HeadersBound:        astats.HeadersBound,
			RepeatedHeaders:     astats.RepeatedHeaders,
			DroppedPairs:        astats.DroppedPairs,
			OddTail:             astats.OddTail,
			Records:             astats.Records,
			DiscardedDuplicates: pstats.DiscardedDuplicates,
			UnparseableValues:   unparseable,
		},
	}

	elapsed := time.Since(start)
	if e.recorder != nil {
		e.recorder.RecordReconstruction(ctx, res.Diagnostics, elapsed)
	}

	d := res.Diagnostics
	attrs := []any{
		slog.Int("input_lines", d.InputLines),
		slog.Int("label_lines_removed", d.LabelLinesRemoved),
		slog.Int("headers_bound", d.HeadersBound),
		slog.Int("repeated_headers", d.RepeatedHeaders),
		slog.Int("dropped_pairs", d.DroppedPairs),
		slog.Bool("odd_tail", d.OddTail),
		slog.Int("records", d.Records),
		slog.Int("entities", pstats.Entities),
		slog.Int("metrics", pstats.Metrics),
		slog.Int("discarded_duplicates", d.DiscardedDuplicates),
		slog.Int("unparseable_values", d.UnparseableValues),
		slog.Duration("elapsed", elapsed),
	}

	if len(records) == 0 {
		e.logger.WarnContext(ctx, "No records reconstructed", attrs...)
		return res, ErrEmptyResult
	}
	if d.DroppedPairs > 0 {
		e.logger.WarnContext(ctx, "Dropped lines before first fund header",
			slog.Int("dropped_pairs", d.DroppedPairs))
	}
	e.logger.InfoContext(ctx, "Table reconstructed", attrs...)
	return res, nil
}
