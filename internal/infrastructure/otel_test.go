package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultOTelConfig(t *testing.T) {
	cfg := DefaultOTelConfig()

	assert.Equal(t, ServiceName, cfg.ServiceName)
	assert.True(t, cfg.EnableMetrics)
	assert.False(t, cfg.EnableTracing)
	assert.Equal(t, "prometheus", cfg.MetricExporter)
}

func TestInitializeOTelMetricsOnly(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "leadlag-test",
		ServiceVersion: "0.0.0",
		Environment:    "test",
		MetricExporter: "prometheus",
		EnableMetrics:  true,
	}, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { providers.Shutdown(context.Background()) })

	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)
	assert.Nil(t, providers.TracerProvider)
}

func TestInitializeOTelRejectsUnknownExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{
		ServiceName:    "leadlag-test",
		MetricExporter: "statsd",
		EnableMetrics:  true,
	}, discardLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported metric exporter")
}

func TestCreateEngineMetrics(t *testing.T) {
	// A plain SDK meter provider avoids registering a second exporter on
	// the process-wide prometheus registry.
	mp := sdkmetric.NewMeterProvider()
	t.Cleanup(func() { mp.Shutdown(context.Background()) })

	metrics, err := CreateEngineMetrics(mp.Meter("test"))
	require.NoError(t, err)
	require.NotNil(t, metrics)

	assert.NotNil(t, metrics.AnalysisRunsTotal)
	assert.NotNil(t, metrics.AnalysisRunDuration)
	assert.NotNil(t, metrics.ExportsTotal)
	assert.NotNil(t, metrics.WSActiveConnections)

	// Recording must not panic, with or without an error outcome.
	ctx := context.Background()
	RecordAnalysisRun(ctx, metrics, 120*time.Millisecond, 48, 25, nil)
	RecordAnalysisRun(ctx, metrics, time.Millisecond, 0, 0, errors.New("alignment failed"))
	RecordAnalysisRun(ctx, nil, time.Millisecond, 0, 0, nil)
}
