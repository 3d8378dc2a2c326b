package services

import (
	"context"
	"errors"
	"log/slog"

	apperrors "lgpsreport/internal/errors"
	"lgpsreport/internal/extract"
	"lgpsreport/internal/reconstruct"
	"lgpsreport/pkg/contracts/domain"
)

// ReconstructOptions override the engine defaults for one request.
type ReconstructOptions struct {
	Labels       []string
	EntityColumn string
}

// ParsedValue pairs an input string with its numeric interpretation.
type ParsedValue struct {
	Input string              `json:"input"`
	Value domain.NumericValue `json:"value"`
}

// ReconstructService rebuilds tables from posted lines.
type ReconstructService struct {
	engine   *reconstruct.Engine
	defaults reconstruct.Options
	logger   *slog.Logger
}

// NewReconstructService creates a service whose default engine is built
// from opts.
func NewReconstructService(opts reconstruct.Options, logger *slog.Logger) *ReconstructService {
	if logger == nil {
		logger = slog.Default()
	}
	opts.Logger = logger
	return &ReconstructService{
		engine:   reconstruct.NewEngine(opts),
		defaults: opts,
		logger:   logger.With(slog.String("service", "reconstruct")),
	}
}

// Reconstruct runs the engine over lines. A result with no records is an
// EMPTY_RESULT application error carrying the diagnostics.
func (s *ReconstructService) Reconstruct(ctx context.Context, lines []string, opts ReconstructOptions) (*reconstruct.Result, error) {
	lines = extract.CleanLines(lines)
	if len(lines) == 0 {
		return nil, apperrors.NewAppValidationError("lines contain no text")
	}

	engine := s.engine
	if len(opts.Labels) > 0 || opts.EntityColumn != "" {
		custom := s.defaults
		if len(opts.Labels) > 0 {
			custom.StructuralLabels = opts.Labels
		}
		if opts.EntityColumn != "" {
			custom.EntityColumn = opts.EntityColumn
		}
		engine = reconstruct.NewEngine(custom)
	}

	res, err := engine.Reconstruct(ctx, lines)
	if errors.Is(err, reconstruct.ErrEmptyResult) {
		return res, apperrors.NewEmptyResultError("request", err).
			WithContext("diagnostics", res.Diagnostics)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ParseNumeric interprets each value the way reconstruction does.
func (s *ReconstructService) ParseNumeric(values []string) []ParsedValue {
	out := make([]ParsedValue, len(values))
	for i, v := range values {
		out[i] = ParsedValue{Input: v, Value: reconstruct.ParseNumeric(v)}
	}
	return out
}
