package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"lgpsreport/pkg/contracts/domain"
)

// ReconstructionMetrics counts what each reconstruction run consumed,
// produced and discarded. It satisfies reconstruct.Recorder.
type ReconstructionMetrics struct {
	Lines               metric.Int64Counter
	Records             metric.Int64Counter
	DroppedPairs        metric.Int64Counter
	DiscardedDuplicates metric.Int64Counter
	UnparseableValues   metric.Int64Counter
	EmptyResults        metric.Int64Counter
	Duration            metric.Float64Histogram
}

// NewReconstructionMetrics registers the reconstruction instruments on meter.
func NewReconstructionMetrics(meter metric.Meter) (*ReconstructionMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}

	m := &ReconstructionMetrics{}
	var err error

	counters := []struct {
		target *metric.Int64Counter
		name   string
		desc   string
	}{
		{&m.Lines, "lgps_lines_total", "Input lines received by the reconstruction engine"},
		{&m.Records, "lgps_records_total", "Flat records assembled"},
		{&m.DroppedPairs, "lgps_dropped_pairs_total", "Line pairs dropped before the first fund header"},
		{&m.DiscardedDuplicates, "lgps_discarded_duplicates_total", "Duplicate fund/metric records discarded by the pivot"},
		{&m.UnparseableValues, "lgps_unparseable_values_total", "Values that could not be parsed as numbers"},
		{&m.EmptyResults, "lgps_empty_results_total", "Documents that produced no records"},
	}
	for _, c := range counters {
		*c.target, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
	}

	m.Duration, err = meter.Float64Histogram(
		"lgps_reconstruct_duration_seconds",
		metric.WithDescription("Reconstruction duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RecordReconstruction adds one run's diagnostics to the counters.
func (m *ReconstructionMetrics) RecordReconstruction(ctx context.Context, d domain.ReconstructionDiagnostics, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Lines.Add(ctx, int64(d.InputLines))
	m.Records.Add(ctx, int64(d.Records))
	m.DroppedPairs.Add(ctx, int64(d.DroppedPairs))
	m.DiscardedDuplicates.Add(ctx, int64(d.DiscardedDuplicates))
	m.UnparseableValues.Add(ctx, int64(d.UnparseableValues))
	if d.Records == 0 {
		m.EmptyResults.Add(ctx, 1)
	}
	m.Duration.Record(ctx, elapsed.Seconds())
}

// PipelineMetrics covers pipeline runs and their steps.
type PipelineMetrics struct {
	RunsTotal    metric.Int64Counter
	RunDuration  metric.Float64Histogram
	StepsTotal   metric.Int64Counter
	StepDuration metric.Float64Histogram
	Documents    metric.Int64Counter
}

// NewPipelineMetrics registers the pipeline instruments on meter.
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}

	runs, err := meter.Int64Counter("lgps_pipeline_runs_total",
		metric.WithDescription("Pipeline runs by status"))
	if err != nil {
		return nil, err
	}
	runDuration, err := meter.Float64Histogram("lgps_pipeline_run_duration_seconds",
		metric.WithDescription("Pipeline run duration in seconds"), metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	steps, err := meter.Int64Counter("lgps_pipeline_steps_total",
		metric.WithDescription("Pipeline steps executed by step and status"))
	if err != nil {
		return nil, err
	}
	stepDuration, err := meter.Float64Histogram("lgps_pipeline_step_duration_seconds",
		metric.WithDescription("Pipeline step duration in seconds"), metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	docs, err := meter.Int64Counter("lgps_documents_total",
		metric.WithDescription("Documents processed by outcome"))
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RunsTotal:    runs,
		RunDuration:  runDuration,
		StepsTotal:   steps,
		StepDuration: stepDuration,
		Documents:    docs,
	}, nil
}

// RecordRun records a finished pipeline run.
func (m *PipelineMetrics) RecordRun(ctx context.Context, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(statusAttr(err))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStep records a finished pipeline step.
func (m *PipelineMetrics) RecordStep(ctx context.Context, stepID string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("step.id", stepID), statusAttr(err))
	m.StepsTotal.Add(ctx, 1, attrs)
	m.StepDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordDocument counts a document by outcome ("reconstructed", "skipped",
// "failed").
func (m *PipelineMetrics) RecordDocument(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.Documents.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// HTTPMetrics covers the HTTP surface.
type HTTPMetrics struct {
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram
}

// NewHTTPMetrics registers the HTTP instruments on meter.
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter(MeterName)
	}
	total, err := meter.Int64Counter("http_requests_total",
		metric.WithDescription("Total number of HTTP requests"))
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"), metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}
	return &HTTPMetrics{RequestsTotal: total, RequestDuration: duration}, nil
}

// RecordRequest records one served request.
func (m *HTTPMetrics) RecordRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	m.RequestsTotal.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, duration.Seconds(), attrs)
}

func statusAttr(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("status", "failure")
	}
	return attribute.String("status", "success")
}
