package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"lgpsreport/internal/analytics"
	"lgpsreport/internal/config"
	apperrors "lgpsreport/internal/errors"
	"lgpsreport/internal/exporter"
	"lgpsreport/internal/extract"
	"lgpsreport/internal/files"
	"lgpsreport/internal/insights"
	"lgpsreport/internal/reconstruct"
	"lgpsreport/internal/validation"
	"lgpsreport/pkg/contracts/domain"
)

// Dependencies are the collaborators of the reconstruction pipeline.
// Insights may be nil.
type Dependencies struct {
	Config     *config.Config
	Paths      *config.Paths
	Logger     *slog.Logger
	Engine     *reconstruct.Engine
	Extractors *extract.Registry
	Summarizer *analytics.Summarizer
	Insights   *insights.Writer
	Writer     *exporter.ReportWriter
	Metrics    Recorder
}

// NewPipeline builds a Manager running discover, extract, reconstruct,
// summarize and export in that order.
func NewPipeline(deps Dependencies, cfg *Config) (*Manager, error) {
	if deps.Config == nil || deps.Paths == nil {
		return nil, fmt.Errorf("pipeline requires configuration and paths")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = noopRecorder{}
	}
	if deps.Extractors == nil {
		deps.Extractors = extract.NewRegistry(deps.Logger)
	}
	if deps.Engine == nil {
		deps.Engine = reconstruct.NewEngine(reconstruct.Options{
			StructuralLabels: deps.Config.Reconstruct.StructuralLabels,
			EntityColumn:     deps.Config.Reconstruct.EntityColumn,
			Logger:           deps.Logger,
		})
	}
	if deps.Summarizer == nil {
		deps.Summarizer = analytics.NewSummarizer(deps.Logger, analytics.SummarizerConfig{
			BaseValueMetric: deps.Config.Report.BaseValueMetric,
		})
	}
	if deps.Writer == nil {
		deps.Writer = exporter.NewReportWriter(deps.Paths, deps.Logger)
	}

	if cfg == nil {
		cfg = NewConfig()
	}
	// the insights call gets its own timeout; the step must outlive it
	if t := deps.Config.Insights.Timeout; deps.Insights != nil && t >= cfg.GetStepTimeout(StepIDSummarize) {
		cfg.SetStepTimeout(StepIDSummarize, t+time.Minute)
	}

	registry := NewRegistry()
	for _, step := range []Step{
		&DiscoverStep{BaseStep: NewBaseStep(StepIDDiscover, StepNameDiscover), deps: deps},
		&ExtractStep{BaseStep: NewBaseStep(StepIDExtract, StepNameExtract), deps: deps},
		&ReconstructStep{BaseStep: NewBaseStep(StepIDReconstruct, StepNameReconstruct), deps: deps},
		&SummarizeStep{BaseStep: NewBaseStep(StepIDSummarize, StepNameSummarize), deps: deps},
		&ExportStep{BaseStep: NewBaseStep(StepIDExport, StepNameExport), deps: deps},
	} {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}
	return NewManager(registry, cfg, deps.Logger, deps.Metrics), nil
}

// DiscoverStep lists the documents to process.
type DiscoverStep struct {
	BaseStep
	deps Dependencies
}

// Execute stores the input paths under ContextKeyInputs. Explicit request
// paths win over directory discovery.
func (s *DiscoverStep) Execute(ctx context.Context, state *OperationState) error {
	stepState := state.GetStage(s.ID())

	var inputs []string
	if paths, ok := configValue[[]string](state, ConfigKeyPaths); ok && len(paths) > 0 {
		validator := validation.NewFileValidator(s.deps.Logger)
		for _, p := range paths {
			if !s.deps.Extractors.Supports(p) {
				s.deps.Logger.WarnContext(ctx, "Unsupported document ignored", slog.String("path", p))
				continue
			}
			if err := validator.ValidateFile(p); err != nil {
				s.deps.Logger.WarnContext(ctx, "Unreadable document ignored", slog.String("error", err.Error()))
				continue
			}
			inputs = append(inputs, p)
		}
	} else {
		dir, ok := configValue[string](state, ConfigKeyInputDir)
		if !ok || dir == "" {
			dir = s.deps.Paths.RawDir
		}
		exts := s.deps.Config.Reconstruct.Extensions
		if len(exts) == 0 {
			exts = s.deps.Extractors.Extensions()
		}
		found, err := files.NewDiscovery(s.deps.Paths.BaseDir).FindDocuments(dir, exts)
		if err != nil {
			return apperrors.NewNotFoundError("input directory " + dir)
		}
		inputs = files.Paths(found)
	}

	if len(inputs) == 0 {
		return apperrors.NewNotFoundError("input documents")
	}

	state.SetContext(ContextKeyInputs, inputs)
	stepState.SetMetadata("documents", len(inputs))
	stepState.SetMessage(fmt.Sprintf("Found %d documents", len(inputs)))
	return nil
}

// ExtractStep reads the text of every discovered document.
type ExtractStep struct {
	BaseStep
	deps Dependencies
}

// Validate requires discovered inputs
func (s *ExtractStep) Validate(state *OperationState) error {
	if _, ok := contextValue[[]string](state, ContextKeyInputs); !ok {
		return fmt.Errorf("no discovered documents")
	}
	return nil
}

// Execute extracts documents concurrently. A document that fails is kept
// with its error and skipped later.
func (s *ExtractStep) Execute(ctx context.Context, state *OperationState) error {
	inputs, _ := contextValue[[]string](state, ContextKeyInputs)

	texts, err := s.deps.Extractors.ExtractAll(ctx, inputs, s.deps.Config.Reconstruct.Concurrency)
	if err != nil {
		return err
	}

	failed := 0
	for _, t := range texts {
		if t.Err != nil {
			failed++
		}
	}
	state.SetContext(ContextKeyTexts, texts)
	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("extracted", len(texts)-failed)
	stepState.SetMetadata("failed", failed)
	return nil
}

// ReconstructStep rebuilds a wide table from each document and merges them.
type ReconstructStep struct {
	BaseStep
	deps Dependencies
}

// Validate requires extracted texts
func (s *ReconstructStep) Validate(state *OperationState) error {
	if _, ok := contextValue[[]extract.DocumentText](state, ContextKeyTexts); !ok {
		return fmt.Errorf("no extracted text")
	}
	return nil
}

// Execute reconstructs every document. Documents yielding no records are
// reported as skipped; the step fails only when all of them do.
func (s *ReconstructStep) Execute(ctx context.Context, state *OperationState) error {
	texts, _ := contextValue[[]extract.DocumentText](state, ContextKeyTexts)

	reports := make([]domain.DocumentReport, 0, len(texts))
	var merged []domain.FlatRecord
	var combined domain.ReconstructionDiagnostics

	for _, text := range texts {
		if err := ctx.Err(); err != nil {
			return err
		}
		report := domain.DocumentReport{Source: text.Path, ProcessedAt: time.Now()}

		if text.Err != nil {
			report.Skipped = true
			report.SkipReason = text.Err.Error()
			reports = append(reports, report)
			s.deps.Metrics.RecordDocument(ctx, DocumentFailed)
			continue
		}

		res, err := s.deps.Engine.Reconstruct(ctx, text.Lines)
		switch {
		case errors.Is(err, reconstruct.ErrEmptyResult):
			report.Skipped = true
			report.SkipReason = "no records recovered"
			report.Diagnostics = res.Diagnostics
			s.deps.Logger.WarnContext(ctx, "Document skipped",
				slog.String("source", text.Path),
				slog.Any("diagnostics", res.Diagnostics))
			s.deps.Metrics.RecordDocument(ctx, DocumentEmpty)
		case err != nil:
			return err
		default:
			report.Table = res.Table
			report.Records = res.Records
			report.Diagnostics = res.Diagnostics
			merged = append(merged, res.Records...)
			addDiagnostics(&combined, res.Diagnostics)
			s.deps.Metrics.RecordDocument(ctx, DocumentReconstructed)
		}
		reports = append(reports, report)
	}

	state.SetContext(ContextKeyDocuments, reports)
	if len(merged) == 0 {
		return apperrors.NewEmptyResultError(fmt.Sprintf("%d documents", len(texts)), reconstruct.ErrEmptyResult)
	}

	table, stats := reconstruct.NewPivoter(s.deps.Config.Reconstruct.EntityColumn).Pivot(merged)
	combined.DiscardedDuplicates = stats.DiscardedDuplicates

	state.SetContext(ContextKeyRecords, merged)
	state.SetContext(ContextKeyTable, table)
	state.SetContext(ContextKeyDiagnostics, combined)

	stepState := state.GetStage(s.ID())
	stepState.SetMetadata("entities", stats.Entities)
	stepState.SetMetadata("metrics", stats.Metrics)
	stepState.SetMessage(fmt.Sprintf("Reconstructed %d entities from %d records", stats.Entities, len(merged)))
	return nil
}

// addDiagnostics accumulates the per-document counters. Duplicates are
// recounted over the merged records by the caller.
func addDiagnostics(dst *domain.ReconstructionDiagnostics, d domain.ReconstructionDiagnostics) {
	dst.InputLines += d.InputLines
	dst.LabelLinesRemoved += d.LabelLinesRemoved
	dst.HeadersBound += d.HeadersBound
	dst.RepeatedHeaders += d.RepeatedHeaders
	dst.DroppedPairs += d.DroppedPairs
	dst.OddTail = dst.OddTail || d.OddTail
	dst.Records += d.Records
	dst.UnparseableValues += d.UnparseableValues
}

// SummarizeStep computes the analytics summary and the optional write-up.
type SummarizeStep struct {
	BaseStep
	deps Dependencies
}

// Validate requires the merged table
func (s *SummarizeStep) Validate(state *OperationState) error {
	if _, ok := contextValue[*domain.PivotTable](state, ContextKeyTable); !ok {
		return fmt.Errorf("no reconstructed table")
	}
	return nil
}

// Execute stores the summary. Insight generation failures are logged and
// leave the report without a write-up.
func (s *SummarizeStep) Execute(ctx context.Context, state *OperationState) error {
	table, _ := contextValue[*domain.PivotTable](state, ContextKeyTable)
	summary := s.deps.Summarizer.Summarize(ctx, table)
	state.SetContext(ContextKeySummary, summary)

	if s.deps.Insights == nil {
		return nil
	}

	draft := buildReport(s.deps, state)
	text, err := s.deps.Insights.WriteUp(ctx, draft.Markdown())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.deps.Logger.WarnContext(ctx, "Insights unavailable", slog.String("error", err.Error()))
		state.GetStage(s.ID()).SetMetadata("insights_error", err.Error())
		return nil
	}
	state.SetContext(ContextKeyInsights, text)
	return nil
}

// buildReport assembles the report from everything stored so far.
func buildReport(deps Dependencies, state *OperationState) exporter.Report {
	table, _ := contextValue[*domain.PivotTable](state, ContextKeyTable)
	summary, _ := contextValue[analytics.Summary](state, ContextKeySummary)
	diagnostics, _ := contextValue[domain.ReconstructionDiagnostics](state, ContextKeyDiagnostics)
	text, _ := contextValue[string](state, ContextKeyInsights)
	docs, _ := contextValue[[]domain.DocumentReport](state, ContextKeyDocuments)

	report := exporter.Report{
		Title:           deps.Config.Report.Title,
		GeneratedAt:     time.Now(),
		Currency:        deps.Config.Report.Currency,
		BaseValueMetric: deps.Config.Report.BaseValueMetric,
		Table:           table,
		Summary:         summary,
		Diagnostics:     diagnostics,
		Insights:        text,
	}
	for _, d := range docs {
		if d.Skipped {
			report.Skipped = append(report.Skipped, fmt.Sprintf("%s: %s", filepath.Base(d.Source), d.SkipReason))
		} else {
			report.Sources = append(report.Sources, filepath.Base(d.Source))
		}
	}
	return report
}

// ExportStep writes the report in every configured format.
type ExportStep struct {
	BaseStep
	deps Dependencies
}

// Validate requires the summary and known formats
func (s *ExportStep) Validate(state *OperationState) error {
	if _, ok := contextValue[analytics.Summary](state, ContextKeySummary); !ok {
		return fmt.Errorf("no summary")
	}
	formats, _ := configValue[[]string](state, ConfigKeyFormats)
	for _, f := range formats {
		if !config.IsKnownFormat(f) {
			return fmt.Errorf("unsupported report format %q", f)
		}
	}
	return nil
}

// Execute writes the reports and stores their paths under ContextKeyOutputs.
func (s *ExportStep) Execute(ctx context.Context, state *OperationState) error {
	base, ok := configValue[string](state, ConfigKeyOutputBase)
	if !ok || base == "" {
		base = config.ReconstructedReportBase
	}
	formats, ok := configValue[[]string](state, ConfigKeyFormats)
	if !ok || len(formats) == 0 {
		formats = s.deps.Config.Report.Formats
	}
	records, _ := contextValue[[]domain.FlatRecord](state, ContextKeyRecords)

	written, err := s.deps.Writer.Write(ctx, base, formats, buildReport(s.deps, state), records)
	state.SetContext(ContextKeyOutputs, written)
	if err != nil {
		return NewExecutionError(s.ID(), err, !errors.Is(err, context.Canceled))
	}
	state.GetStage(s.ID()).SetMetadata("files", len(written))
	return nil
}
