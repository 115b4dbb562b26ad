package telemetry_test

import (
	"context"
	"testing"

	"github.com/brewline/storefront/internal/domain/cart"
	"github.com/brewline/storefront/internal/domain/catalog"
	"github.com/brewline/storefront/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func newTestStoreMetrics(t *testing.T) (*telemetry.StoreMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := telemetry.NewMeterProviderWithReader(reader, zaptest.NewLogger(t))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := telemetry.NewStoreMetrics(mp.Meter("storefront"), zaptest.NewLogger(t))
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumOf(t *testing.T, data metricdata.Aggregation) int64 {
	t.Helper()
	sum, ok := data.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum, got %T", data)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func testCart(t *testing.T) *cart.Cart {
	t.Helper()
	p, err := catalog.NewProduct(catalog.ProductDetails{
		Name:        "Espresso",
		Price:       decimal.NewFromInt(12),
		CategoryIDs: []uuid.UUID{uuid.New()},
	})
	require.NoError(t, err)

	c := cart.New()
	_, err = c.AddToCart(p, nil, nil)
	require.NoError(t, err)
	return c
}

func TestStoreMetrics_HandlesCartEvents(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestStoreMetrics(t)
	c := testCart(t)
	line := c.Lines()[0]

	require.NoError(t, m.Handle(ctx, cart.NewItemAddedEvent(c, line)))
	require.NoError(t, m.Handle(ctx, cart.NewItemAddedEvent(c, line)))
	require.NoError(t, m.Handle(ctx, cart.NewOrderPlacedEvent(c, "SAR")))
	require.NoError(t, m.Handle(ctx, cart.NewClearedEvent(c, 1)))

	data := collect(t, reader)
	assert.Equal(t, int64(2), sumOf(t, data["storefront_cart_items_added_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["storefront_checkouts_total"]))
	assert.Equal(t, int64(1), sumOf(t, data["storefront_carts_cleared_total"]))

	hist, ok := data["storefront_checkout_value"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.InDelta(t, 12.0, hist.DataPoints[0].Sum, 0.001)
}

func TestStoreMetrics_EventTypes(t *testing.T) {
	m, _ := newTestStoreMetrics(t)
	assert.ElementsMatch(t, []string{
		cart.EventTypeCartItemAdded,
		cart.EventTypeCartCleared,
		cart.EventTypeOrderPlaced,
	}, m.EventTypes())
}

func TestStoreMetrics_PersistenceFailures(t *testing.T) {
	ctx := context.Background()
	m, reader := newTestStoreMetrics(t)

	m.RecordPersistenceFailure(ctx, "products")
	m.RecordPersistenceFailure(ctx, "products")
	m.RecordPersistenceFailure(ctx, "settings")

	sum, ok := collect(t, reader)["storefront_persistence_failures_total"].(metricdata.Sum[int64])
	require.True(t, ok)

	byKey := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(telemetry.AttrStateKey)
		byKey[v.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"products": 2, "settings": 1}, byKey)
}

func TestStoreMetrics_ObserveActiveCarts(t *testing.T) {
	m, reader := newTestStoreMetrics(t)
	active := 3
	require.NoError(t, m.ObserveActiveCarts(func() int { return active }))

	gauge, ok := collect(t, reader)["storefront_active_carts"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(3), gauge.DataPoints[0].Value)

	active = 1
	gauge = collect(t, reader)["storefront_active_carts"].(metricdata.Gauge[int64])
	assert.Equal(t, int64(1), gauge.DataPoints[0].Value)
}
