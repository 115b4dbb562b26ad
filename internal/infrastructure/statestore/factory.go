// Package statestore selects and decorates the configured snapshot backend.
package statestore

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/infrastructure/cache"
	"github.com/brewline/storefront/internal/infrastructure/config"
	"github.com/brewline/storefront/internal/infrastructure/kv"
	"github.com/brewline/storefront/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// Factory builds the StateRepository named by storage.backend
type Factory struct {
	cfg    *config.Config
	db     *persistence.Database
	logger *zap.Logger
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithDatabase supplies the gorm database for the "database" backend
func WithDatabase(db *persistence.Database) FactoryOption {
	return func(f *Factory) {
		f.db = db
	}
}

// WithLogger sets the factory logger
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a factory for cfg
func NewFactory(cfg *config.Config, opts ...FactoryOption) *Factory {
	f := &Factory{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create opens the backend. The returned closer releases connections the
// factory opened itself; it is a no-op for the shared database.
func (f *Factory) Create(ctx context.Context) (shared.StateRepository, io.Closer, error) {
	var (
		repo   shared.StateRepository
		closer io.Closer = nopCloser{}
	)

	switch f.cfg.Storage.Backend {
	case config.StorageBackendDatabase, "":
		if f.db == nil {
			return nil, nil, fmt.Errorf("storage backend %q requires a database", config.StorageBackendDatabase)
		}
		repo = persistence.NewGormStateRepository(f.db.DB)

	case config.StorageBackendRedis:
		client, err := cache.NewRedisClient(ctx, f.cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		store := cache.NewRedisStateStore(client, f.cfg.Storage.KeyPrefix)
		repo, closer = store, store

	case config.StorageBackendNATS:
		store, err := kv.NewJetStreamStateStore(f.cfg.NATS.URL, f.cfg.NATS.Bucket)
		if err != nil {
			return nil, nil, err
		}
		if err := store.Init(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
		repo, closer = store, store

	case config.StorageBackendMemory:
		f.logger.Warn("Using in-memory state storage; catalog and settings are lost on restart")
		repo = persistence.NewMemoryStateRepository()

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", f.cfg.Storage.Backend)
	}

	f.logger.Info("State storage ready", zap.String("backend", f.cfg.Storage.Backend))
	return WithTimeout(repo, f.cfg.Storage.Timeout), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// timeoutRepository bounds every call with a deadline
type timeoutRepository struct {
	next    shared.StateRepository
	timeout time.Duration
}

// WithTimeout wraps repo so each call gets at most d. A non-positive d returns repo unchanged.
func WithTimeout(repo shared.StateRepository, d time.Duration) shared.StateRepository {
	if d <= 0 {
		return repo
	}
	return &timeoutRepository{next: repo, timeout: d}
}

func (r *timeoutRepository) Load(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.next.Load(ctx, key)
}

func (r *timeoutRepository) Save(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.next.Save(ctx, key, data)
}

func (r *timeoutRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.next.Ping(ctx)
}
