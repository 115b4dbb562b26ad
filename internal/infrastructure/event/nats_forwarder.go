package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

const (
	// DefaultStream is the JetStream stream that receives forwarded events
	DefaultStream = "STOREFRONT_EVENTS"
	// SubjectPrefix prefixes the event type to form the subject
	SubjectPrefix = "storefront.events."
)

// Envelope is the wire form of a forwarded event
type Envelope struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSForwarder is an event handler that copies every event onto a JetStream stream
type NATSForwarder struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *zap.Logger
}

// NewNATSForwarder connects to NATS and makes sure the events stream exists
func NewNATSForwarder(ctx context.Context, url, stream string, logger *zap.Logger) (*NATSForwarder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if stream == "" {
		stream = DefaultStream
	}

	nc, err := nats.Connect(url,
		nats.Name("storefront-events"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        stream,
		Description: "Storefront domain events",
		Subjects:    []string{SubjectPrefix + ">"},
		MaxAge:      7 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Duplicates:  2 * time.Minute,
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create events stream: %w", err)
	}

	logger.Info("NATS event forwarding enabled", zap.String("stream", stream))
	return &NATSForwarder{nc: nc, js: js, logger: logger}, nil
}

// Handle publishes the event. The event id doubles as the JetStream message id
// so retried publishes are deduplicated.
func (f *NATSForwarder) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data, err := json.Marshal(Envelope{
		ID:            event.EventID().String(),
		Type:          event.EventType(),
		AggregateType: event.AggregateType(),
		AggregateID:   event.AggregateID().String(),
		OccurredAt:    event.OccurredAt(),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	ack, err := f.js.Publish(ctx, SubjectPrefix+event.EventType(), data,
		jetstream.WithMsgID(event.EventID().String()))
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.EventType(), err)
	}
	f.logger.Debug("Event forwarded",
		zap.String("event_type", event.EventType()),
		zap.Uint64("sequence", ack.Sequence),
	)
	return nil
}

// EventTypes returns nil; the forwarder receives every event
func (f *NATSForwarder) EventTypes() []string {
	return nil
}

// Close drains the connection
func (f *NATSForwarder) Close() error {
	return f.nc.Drain()
}

var _ shared.EventHandler = (*NATSForwarder)(nil)
