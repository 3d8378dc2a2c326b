package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"lgpsreport/internal/config"
	"lgpsreport/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(OTelConfigFrom(config.MetricsConfig{Enabled: true, TraceExporter: "none"}), discardLogger())
	require.NoError(t, err)

	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelMetricsDisabled(t *testing.T) {
	providers, err := InitializeOTel(OTelConfigFrom(config.MetricsConfig{}), discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)
	require.NotNil(t, providers.Meter, "a no-op meter is always provided")

	_, err = NewReconstructionMetrics(providers.Meter)
	assert.NoError(t, err)
}

func TestOTelUnsupportedTraceExporter(t *testing.T) {
	cfg := OTelConfigFrom(config.MetricsConfig{TraceExporter: "jaeger"})
	_, err := InitializeOTel(cfg, discardLogger())
	assert.ErrorContains(t, err, "unsupported trace exporter")
}

func TestOTelStdoutTracing(t *testing.T) {
	providers, err := InitializeOTel(OTelConfigFrom(config.MetricsConfig{TraceExporter: TraceExporterStdout}), discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers.TracerProvider)

	ctx, span := providers.Tracer.Start(context.Background(), "run")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	RecordError(ctx, assert.AnError)
	span.End()

	assert.NoError(t, providers.Shutdown(context.Background()))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) int64 {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not collected", name)
	return 0
}

func TestReconstructionMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	m, err := NewReconstructionMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordReconstruction(ctx, domain.ReconstructionDiagnostics{
		InputLines: 10, Records: 3, DroppedPairs: 1, DiscardedDuplicates: 2, UnparseableValues: 1,
	}, 5*time.Millisecond)
	m.RecordReconstruction(ctx, domain.ReconstructionDiagnostics{InputLines: 4}, time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	assert.Equal(t, int64(14), sumOf(t, rm, "lgps_lines_total"))
	assert.Equal(t, int64(3), sumOf(t, rm, "lgps_records_total"))
	assert.Equal(t, int64(1), sumOf(t, rm, "lgps_dropped_pairs_total"))
	assert.Equal(t, int64(2), sumOf(t, rm, "lgps_discarded_duplicates_total"))
	assert.Equal(t, int64(1), sumOf(t, rm, "lgps_unparseable_values_total"))
	assert.Equal(t, int64(1), sumOf(t, rm, "lgps_empty_results_total"))
}

func TestPipelineAndHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())
	ctx := context.Background()

	pm, err := NewPipelineMetrics(mp.Meter("test"))
	require.NoError(t, err)
	pm.RecordRun(ctx, time.Second, nil)
	pm.RecordStep(ctx, "extract", time.Millisecond, nil)
	pm.RecordStep(ctx, "reconstruct", time.Millisecond, assert.AnError)
	pm.RecordDocument(ctx, "skipped")

	hm, err := NewHTTPMetrics(mp.Meter("test"))
	require.NoError(t, err)
	hm.RecordRequest(ctx, "POST", "/api/v1/reconstruct", 200, time.Millisecond)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	assert.Equal(t, int64(1), sumOf(t, rm, "lgps_pipeline_runs_total"))
	assert.Equal(t, int64(2), sumOf(t, rm, "lgps_pipeline_steps_total"))
	assert.Equal(t, int64(1), sumOf(t, rm, "lgps_documents_total"))
	assert.Equal(t, int64(1), sumOf(t, rm, "http_requests_total"))

	var nilMetrics *PipelineMetrics
	assert.NotPanics(t, func() { nilMetrics.RecordRun(ctx, time.Second, nil) })
}
