package analytics

import (
	"context"
	"log/slog"

	"lgpsreport/internal/config"
	"lgpsreport/pkg/contracts/domain"
)

// Summary bundles everything the report writers need about one table.
type Summary struct {
	Overview Overview        `json:"overview"`
	Metrics  []MetricSummary `json:"metrics"`
}

// Summarizer produces Summaries for reconstructed tables.
type Summarizer struct {
	logger          *slog.Logger
	baseValueMetric string
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	// BaseValueMetric is the column used for totals and breakdowns.
	BaseValueMetric string
}

// NewSummarizer creates a summarizer.
func NewSummarizer(logger *slog.Logger, cfg SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BaseValueMetric == "" {
		cfg.BaseValueMetric = config.DefaultBaseValueMetric
	}
	return &Summarizer{
		logger:          logger.With(slog.String("component", "summarizer")),
		baseValueMetric: cfg.BaseValueMetric,
	}
}

// BaseValueMetric returns the metric used for totals.
func (s *Summarizer) BaseValueMetric() string {
	return s.baseValueMetric
}

// Summarize computes the overview and per-metric statistics of table.
func (s *Summarizer) Summarize(ctx context.Context, table *domain.PivotTable) Summary {
	summary := Summary{
		Overview: NewOverview(table, s.baseValueMetric),
		Metrics:  SummarizeAll(table),
	}

	if table != nil && !table.HasMetric(s.baseValueMetric) {
		s.logger.WarnContext(ctx, "base value metric not present in table",
			slog.String("metric", s.baseValueMetric),
			slog.Int("metrics", len(table.Metrics)))
	}

	s.logger.InfoContext(ctx, "table summarized",
		slog.Int("funds", summary.Overview.Funds),
		slog.Int("metrics", len(summary.Metrics)),
		slog.String("total", summary.Overview.Total.String()),
		slog.String("uk_exposure", summary.Overview.UKExposure.String()))

	return summary
}
