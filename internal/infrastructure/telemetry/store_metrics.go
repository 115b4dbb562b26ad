package telemetry

import (
	"context"
	"fmt"

	"github.com/brewline/storefront/internal/domain/cart"
	"github.com/brewline/storefront/internal/domain/shared"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// StoreMetrics records storefront business metrics:
//   - storefront_cart_items_added_total
//   - storefront_carts_cleared_total
//   - storefront_checkouts_total
//   - storefront_checkout_value
//   - storefront_persistence_failures_total
//   - storefront_active_carts (observed)
//
// It subscribes to the event bus and receives persistence failures from the
// snapshot writers.
type StoreMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	itemsAdded          *Counter
	cartsCleared        *Counter
	checkouts           *Counter
	checkoutValue       *Histogram
	persistenceFailures *Counter
	activeCarts         metric.Int64ObservableGauge
}

// NewStoreMetrics creates the instruments on the given meter
func NewStoreMetrics(meter metric.Meter, logger *zap.Logger) (*StoreMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &StoreMetrics{meter: meter, logger: logger}

	var err error
	if m.itemsAdded, err = NewCounter(meter, "storefront_cart_items_added_total",
		"Lines added to carts", "{line}"); err != nil {
		return nil, err
	}
	if m.cartsCleared, err = NewCounter(meter, "storefront_carts_cleared_total",
		"Carts explicitly emptied", "{cart}"); err != nil {
		return nil, err
	}
	if m.checkouts, err = NewCounter(meter, "storefront_checkouts_total",
		"Order messages generated", "{order}"); err != nil {
		return nil, err
	}
	if m.checkoutValue, err = NewHistogram(meter, HistogramOpts{
		Name:        "storefront_checkout_value",
		Description: "Cart subtotal at checkout",
		Unit:        "{currency}",
		Boundaries:  OrderValueBuckets,
	}); err != nil {
		return nil, err
	}
	if m.persistenceFailures, err = NewCounter(meter, "storefront_persistence_failures_total",
		"State snapshots that could not be saved", "{write}"); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveActiveCarts registers a gauge fed by count on every collection
func (m *StoreMetrics) ObserveActiveCarts(count func() int) error {
	gauge, err := m.meter.Int64ObservableGauge(
		"storefront_active_carts",
		metric.WithDescription("Cart sessions currently held in memory"),
		metric.WithUnit("{cart}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(count()))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create active carts gauge: %w", err)
	}
	m.activeCarts = gauge
	return nil
}

// RecordPersistenceFailure counts a failed snapshot write
func (m *StoreMetrics) RecordPersistenceFailure(ctx context.Context, key string) {
	m.persistenceFailures.Inc(ctx, AttrStateKey.String(key))
}

// EventTypes implements shared.EventHandler
func (m *StoreMetrics) EventTypes() []string {
	return []string{
		cart.EventTypeCartItemAdded,
		cart.EventTypeCartCleared,
		cart.EventTypeOrderPlaced,
	}
}

// Handle implements shared.EventHandler
func (m *StoreMetrics) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *cart.ItemAddedEvent:
		m.itemsAdded.Inc(ctx)
	case *cart.ClearedEvent:
		m.cartsCleared.Inc(ctx)
	case *cart.OrderPlacedEvent:
		m.checkouts.Inc(ctx, AttrCurrency.String(e.Currency))
		m.checkoutValue.Record(ctx, e.Subtotal.InexactFloat64(), AttrCurrency.String(e.Currency))
	default:
		m.logger.Debug("Ignoring event", zap.String("event_type", event.EventType()))
	}
	return nil
}
