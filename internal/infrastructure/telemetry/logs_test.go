package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingProcessor struct {
	mu     sync.Mutex
	bodies []string
}

func (p *recordingProcessor) OnEmit(_ context.Context, r *sdklog.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bodies = append(p.bodies, r.Body().AsString())
	return nil
}

func (p *recordingProcessor) Enabled(context.Context, sdklog.EnabledParameters) bool { return true }
func (p *recordingProcessor) Shutdown(context.Context) error                         { return nil }
func (p *recordingProcessor) ForceFlush(context.Context) error                       { return nil }

func (p *recordingProcessor) Bodies() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.bodies...)
}

func TestZapOTELCore_ForwardsAtOrAboveLevel(t *testing.T) {
	proc := &recordingProcessor{}
	lp := NewLoggerProviderWithProcessor(proc, zap.NewNop())
	require.True(t, lp.IsEnabled())

	logger := zap.New(NewZapOTELCore("storefront", lp, zapcore.WarnLevel))
	logger.Info("cart created")
	logger.Warn("snapshot save failed")
	logger.Error("checkout failed")

	assert.Equal(t, []string{"snapshot save failed", "checkout failed"}, proc.Bodies())
}

func TestZapOTELCore_DebugLevelIsUnfiltered(t *testing.T) {
	proc := &recordingProcessor{}
	lp := NewLoggerProviderWithProcessor(proc, zap.NewNop())

	core := NewZapOTELCore("storefront", lp, zapcore.DebugLevel)
	_, wrapped := core.(*levelFilterCore)
	assert.False(t, wrapped)
}

func TestLevelFilterCore_With(t *testing.T) {
	inner, logs := observer.New(zapcore.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.InfoLevel}

	logger := zap.New(core.With([]zapcore.Field{zap.String("session", "abc")}))
	logger.Debug("dropped")
	logger.Info("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "abc", entry.ContextMap()["session"])
}
