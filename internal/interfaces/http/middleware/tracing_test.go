package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	previous := otel.GetTracerProvider()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(previous)
	})
	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, span := range sr.Ended() {
		if span.Name() == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return nil
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func newTracedRouter(status int) *gin.Engine {
	router := gin.New()
	router.Use(
		TracingWithConfig(TracingConfig{Enabled: true, ServiceName: "storefront-test"}),
		SpanErrorMarker(),
		RequestID(),
		CartSession(),
		TracingAttributeInjector(),
	)
	router.GET("/cart/items/:line_id", func(c *gin.Context) { c.Status(status) })
	return router
}

func TestTracingWithConfig_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(TracingWithConfig(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanCarriesRequestAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	req := httptest.NewRequest(http.MethodGet, "/cart/items/42", nil)
	req.Header.Set(RequestIDHeader, "req-trace-1")
	req.Header.Set(CartSessionHeader, "session-trace-1")
	w := httptest.NewRecorder()
	newTracedRouter(http.StatusOK).ServeHTTP(w, req)

	span := findSpan(t, sr, "GET /cart/items/:line_id")
	requestID, ok := spanAttr(span, "request_id")
	require.True(t, ok)
	assert.Equal(t, "req-trace-1", requestID.AsString())
	session, ok := spanAttr(span, "cart_session")
	require.True(t, ok)
	assert.Equal(t, "session-trace-1", session.AsString())
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		status  int
		isError bool
	}{
		{http.StatusOK, false},
		{http.StatusNotFound, true},
		{http.StatusUnprocessableEntity, true},
		{http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			sr := setupTestTracer(t)

			w := httptest.NewRecorder()
			newTracedRouter(tt.status).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart/items/1", nil))

			span := findSpan(t, sr, "GET /cart/items/:line_id")
			if tt.isError {
				assert.Equal(t, codes.Error, span.Status().Code)
				assert.Equal(t, http.StatusText(tt.status), span.Status().Description)
			} else {
				assert.NotEqual(t, codes.Error, span.Status().Code)
			}
		})
	}
}

func TestTracingAttributeInjector_WithNoSpan(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), TracingAttributeInjector(), SpanErrorMarker())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
