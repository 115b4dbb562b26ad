package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"default config", DefaultConfig()},
		{"production config", ProductionConfig()},
		{"nil config", nil},
		{"empty time format", &Config{Level: "debug", Format: "json", Output: "stderr"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestNew_TeesExtraCores(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	l, err := New(&Config{Level: "error", Format: "json", Output: "stderr"}, core)
	require.NoError(t, err)

	l.Info("checkout link built")
	assert.Equal(t, 1, recorded.Len())
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.log")

	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zapcore.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("verbose"))
}

func TestContextLogger(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	base := zap.New(core)

	ctx := WithContext(context.Background(), base)
	ctx, _ = WithRequestID(ctx, base, "req-1")
	ctx, _ = WithSessionID(ctx, base, "sess-9")
	ctx, _ = WithSubject(ctx, base, "admin")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "sess-9", GetSessionID(ctx))
	assert.Equal(t, "admin", GetSubject(ctx))
	assert.Empty(t, GetTraceID(ctx))

	WithLogger(ctx, base).With(zap.String("product_id", "p1")).Info("saved")

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "sess-9", fields["cart_session"])
	assert.Equal(t, "admin", fields["admin"])
	assert.Equal(t, "p1", fields["product_id"])
}

func TestFromContext_Missing(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
	assert.Empty(t, GetRequestID(context.Background()))
	L(context.Background()).Info("no panic on nop logger")
}
