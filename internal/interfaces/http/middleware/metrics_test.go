package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brewline/storefront/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func setupTestMeter(t *testing.T) (*telemetry.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, nil)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func findMetricByName(t *testing.T, reader *sdkmetric.ManualReader, name string) *metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestHTTPMetrics_Disabled(t *testing.T) {
	disabled, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	for name, mp := range map[string]*telemetry.MeterProvider{
		"nil provider":      nil,
		"disabled provider": disabled,
	} {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(HTTPMetrics(HTTPMetricsConfig{MeterProvider: mp}))
			router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestHTTPMetrics_RecordsRoutePattern(t *testing.T) {
	mp, reader := setupTestMeter(t)

	router := gin.New()
	router.Use(HTTPMetrics(HTTPMetricsConfig{MeterProvider: mp}))
	router.GET("/catalog/products/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false})
	})

	for _, id := range []string{"a", "b", "c"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog/products/"+id, nil))
	}

	m := findMetricByName(t, reader, "http_server_request_total")
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1, "all ids collapse into one route")

	dp := sum.DataPoints[0]
	assert.Equal(t, int64(3), dp.Value)
	route, _ := dp.Attributes.Value(telemetry.AttrHTTPRoute)
	assert.Equal(t, "/catalog/products/:id", route.AsString())
	status, _ := dp.Attributes.Value(telemetry.AttrHTTPStatusCode)
	assert.Equal(t, int64(http.StatusNotFound), status.AsInt64())

	assert.NotNil(t, findMetricByName(t, reader, "http_server_request_duration_seconds"))
	assert.NotNil(t, findMetricByName(t, reader, "http_server_response_size_bytes"))
}

func TestHTTPMetrics_ActiveRequestsReturnToZero(t *testing.T) {
	mp, reader := setupTestMeter(t)

	router := gin.New()
	router.Use(HTTPMetrics(HTTPMetricsConfig{MeterProvider: mp}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	m := findMetricByName(t, reader, "http_server_active_requests")
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(0), sum.DataPoints[0].Value)
}

func TestGetRoutePattern_Unmatched(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/nope", nil)
	assert.Equal(t, "unknown", getRoutePattern(c))
}
