package infrastructure

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pollscope/internal/config"
)

func testTelemetry() config.TelemetryConfig {
	return config.TelemetryConfig{
		ServiceName:    "pollscope-test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(testTelemetry(), discardLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.Nil(t, providers.TracerProvider, "trace exporter none")
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelConfiguration(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.TelemetryConfig)
		wantErr bool
	}{
		{"everything disabled", func(c *config.TelemetryConfig) { c.TraceExporter, c.MetricExporter = "none", "none" }, false},
		{"stdout tracing", func(c *config.TelemetryConfig) { c.TraceExporter = "stdout" }, false},
		{"unknown trace exporter", func(c *config.TelemetryConfig) { c.TraceExporter = "zipkin" }, true},
		{"unknown metric exporter", func(c *config.TelemetryConfig) { c.MetricExporter = "statsd" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testTelemetry()
			tt.mutate(&cfg)

			providers, err := InitializeOTel(cfg, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, providers.Meter)
			assert.NoError(t, providers.Shutdown(context.Background()))
		})
	}
}

func TestTraceCorrelation(t *testing.T) {
	cfg := testTelemetry()
	cfg.TraceExporter = "stdout"
	cfg.MetricExporter = "none"
	providers, err := InitializeOTel(cfg, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	ctx, span := providers.Tracer.Start(context.Background(), "refresh")
	defer span.End()

	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(ctx))
	assert.Empty(t, TraceIDFromContext(context.Background()))
}

func TestBusinessMetrics_ExposedOnPrometheus(t *testing.T) {
	providers, err := InitializeOTel(testTelemetry(), discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRefresh(ctx, OutcomeSuccess, 250*time.Millisecond, 42)
	metrics.RecordRefresh(ctx, OutcomeError, time.Second, 0)

	server := httptest.NewServer(providers.PrometheusHTTP)
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	text := string(body)

	assert.Contains(t, text, "poll_refresh_total")
	assert.Contains(t, text, `outcome="success"`)
	assert.Contains(t, text, `outcome="error"`)
	assert.Contains(t, text, "poll_rows_accepted")
	assert.Contains(t, text, "poll_refresh_duration_seconds_bucket")
}

func TestRecordRefresh_NilMetrics(t *testing.T) {
	var m *BusinessMetrics
	assert.NotPanics(t, func() {
		m.RecordRefresh(context.Background(), OutcomeSuccess, time.Second, 1)
	})
}
