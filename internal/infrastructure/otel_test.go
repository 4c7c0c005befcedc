package infrastructure

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "salescli/internal/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel_Defaults(t *testing.T) {
	providers, err := InitializeOTel(nil, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.TracerProvider, "tracing is off by default")
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.PrometheusHTTP)
}

func TestInitializeOTel_AllDisabled(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "test",
		TraceExporter:  "none",
		MetricExporter: "none",
	}, discardLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	// No-op instruments still work
	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordRun(context.Background(), "file", 3, 0, time.Millisecond, nil)
	assert.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{ServiceName: "test", TraceExporter: "zipkin"}, discardLogger())
	assert.Error(t, err)

	_, err = InitializeOTel(&OTelConfig{ServiceName: "test", MetricExporter: "statsd"}, discardLogger())
	assert.Error(t, err)
}

func TestInitializeOTel_StdoutTraces(t *testing.T) {
	var buf bytes.Buffer
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "test",
		TraceExporter:  "stdout",
		MetricExporter: "none",
		SampleRatio:    1,
		TraceOutput:    &buf,
	}, discardLogger())
	require.NoError(t, err)

	ctx, span := providers.Tracer.Start(context.Background(), "pipeline.run")
	assert.NotEmpty(t, GetTraceID(ctx))
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "pipeline.run")
}

func TestPipelineMetrics_Exported(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
	}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := NewPipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRun(ctx, "file", 10, 2, 50*time.Millisecond, nil)
	metrics.RecordRun(ctx, "file", 0, 0, time.Millisecond, apperrors.NewSchemaError([]string{"date"}, nil))

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Contains(t, body, "pipeline_runs_total")
	assert.Contains(t, body, `status="schema_error"`)
	assert.Contains(t, body, "pipeline_rows_total")
	assert.Contains(t, body, "pipeline_coercion_fallbacks_total")
	assert.Contains(t, body, "pipeline_duration_seconds")
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var metrics *PipelineMetrics
	assert.NotPanics(t, func() {
		metrics.RecordRun(context.Background(), "file", 1, 0, time.Second, nil)
	})
}

func TestRunStatus(t *testing.T) {
	assert.Equal(t, "success", RunStatus(nil))
	assert.Equal(t, "schema_error", RunStatus(apperrors.NewSchemaError(nil, nil)))
	assert.Equal(t, "parse_error", RunStatus(apperrors.NewDateParseError(1, "x")))
	assert.Equal(t, "failure", RunStatus(errors.New("disk full")))
}

func TestRecordError_NoSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordError(context.Background(), errors.New("boom"))
	})
}
