package telemetry_test

import (
	"context"
	"testing"

	"github.com/brewline/storefront/internal/infrastructure/telemetry"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestDisabledProviders(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{ServiceName: "storefront"}, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	tp.EnableSpanProfiles()
	assert.False(t, tp.IsSpanProfilesEnabled())
	assert.NoError(t, tp.ForceFlush(ctx))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{ServiceName: "storefront"}, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{ServiceName: "storefront"}, logger)
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.ForceFlush(ctx))
	assert.NoError(t, lp.Shutdown(ctx))

	core := telemetry.NewZapOTELCore("storefront", lp, zapcore.InfoLevel)
	assert.False(t, core.Enabled(zapcore.ErrorLevel))
}

func TestNilMeterProviderFallsBackToGlobal(t *testing.T) {
	var mp *telemetry.MeterProvider
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("fallback"))
}

func TestNewTracerProvider_Enabled(t *testing.T) {
	if testing.Short() {
		t.Skip("requires an OTLP collector")
	}
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     0.5,
		ServiceName:       "storefront",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	tp.EnableSpanProfiles()
	tp.EnableSpanProfiles()
	assert.True(t, tp.IsSpanProfilesEnabled())

	_ = tp.Shutdown(ctx)
}

func TestProfiler(t *testing.T) {
	logger := zaptest.NewLogger(t)

	t.Run("disabled is a no-op", func(t *testing.T) {
		p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{}, logger)
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
		assert.NoError(t, p.Stop())
	})

	t.Run("requires server address", func(t *testing.T) {
		_, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: true, ApplicationName: "storefront"}, logger)
		assert.ErrorContains(t, err, "server address")
	})

	t.Run("requires application name", func(t *testing.T) {
		_, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, logger)
		assert.ErrorContains(t, err, "application name")
	})

	t.Run("collects mutex profiles", func(t *testing.T) {
		assert.Contains(t, telemetry.DefaultProfileTypes, pyroscope.ProfileMutexCount)
		assert.Contains(t, telemetry.DefaultProfileTypes, pyroscope.ProfileCPU)
	})
}
