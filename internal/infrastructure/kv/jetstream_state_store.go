// Package kv stores state snapshots in a NATS JetStream key-value bucket.
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// DefaultBucket is used when no bucket name is configured
const DefaultBucket = "storefront_state"

// JetStreamStateStore implements shared.StateRepository on a JetStream KV bucket.
// Every Save is a new revision; the bucket keeps a short history.
type JetStreamStateStore struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	bucket jetstream.KeyValue
	name   string
}

// NewJetStreamStateStore connects to NATS. Call Init before use.
func NewJetStreamStateStore(natsURL, bucket string, opts ...nats.Option) (*JetStreamStateStore, error) {
	conn, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if bucket == "" {
		bucket = DefaultBucket
	}
	return &JetStreamStateStore{conn: conn, js: js, name: bucket}, nil
}

// Init gets or creates the bucket
func (s *JetStreamStateStore) Init(ctx context.Context) error {
	bucket, err := s.js.KeyValue(ctx, s.name)
	if err == nil {
		s.bucket = bucket
		return nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return fmt.Errorf("failed to open bucket %s: %w", s.name, err)
	}

	bucket, err = s.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      s.name,
		Description: "Storefront catalog and settings snapshots",
		History:     5,
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.name, err)
	}
	s.bucket = bucket
	return nil
}

// Load returns the latest revision for key
func (s *JetStreamStateStore) Load(ctx context.Context, key string) ([]byte, error) {
	if s.bucket == nil {
		return nil, errNotInitialized
	}
	entry, err := s.bucket.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load state %q: %w", key, err)
	}
	return entry.Value(), nil
}

// Save puts a new revision for key
func (s *JetStreamStateStore) Save(ctx context.Context, key string, data []byte) error {
	if s.bucket == nil {
		return errNotInitialized
	}
	if _, err := s.bucket.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to save state %q: %w", key, err)
	}
	return nil
}

// Revision returns the current revision number for key
func (s *JetStreamStateStore) Revision(ctx context.Context, key string) (uint64, error) {
	if s.bucket == nil {
		return 0, errNotInitialized
	}
	entry, err := s.bucket.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return entry.Revision(), nil
}

// Ping reports whether the connection is up
func (s *JetStreamStateStore) Ping(context.Context) error {
	if s.conn == nil || !s.conn.IsConnected() {
		return errors.New("nats: not connected")
	}
	return nil
}

// Close drains the NATS connection
func (s *JetStreamStateStore) Close() error {
	if s.conn != nil {
		return s.conn.Drain()
	}
	return nil
}

var errNotInitialized = errors.New("kv: bucket not initialized, call Init first")

var _ shared.StateRepository = (*JetStreamStateStore)(nil)
