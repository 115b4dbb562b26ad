// Package cache holds the Redis-backed stores.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultStateKeyPrefix = "storefront:state:"

// RedisStateStore keeps snapshots as plain string keys in Redis
type RedisStateStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisStateStore creates a store on an existing client
func NewRedisStateStore(client *redis.Client, keyPrefix string) *RedisStateStore {
	if keyPrefix == "" {
		keyPrefix = defaultStateKeyPrefix
	}
	return &RedisStateStore{client: client, keyPrefix: keyPrefix}
}

// Load returns the blob stored under key
func (s *RedisStateStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load state %q: %w", key, err)
	}
	return data, nil
}

// Save writes the blob without expiry
func (s *RedisStateStore) Save(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save state %q: %w", key, err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *RedisStateStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *RedisStateStore) Close() error {
	return s.client.Close()
}

var _ shared.StateRepository = (*RedisStateStore)(nil)
