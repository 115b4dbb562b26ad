package statestore

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/infrastructure/config"
	"github.com/brewline/storefront/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Backend: config.StorageBackendMemory}}
		repo, closer, err := NewFactory(cfg).Create(ctx)
		require.NoError(t, err)
		defer closer.Close()

		require.NoError(t, repo.Save(ctx, shared.StateKeySettings, []byte(`{}`)))
		assert.NoError(t, repo.Ping(ctx))
	})

	t.Run("database requires a connection", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Backend: config.StorageBackendDatabase}}
		_, _, err := NewFactory(cfg).Create(ctx)
		assert.Error(t, err)
	})

	t.Run("database", func(t *testing.T) {
		db, err := persistence.NewDatabase(&config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
		require.NoError(t, err)
		defer db.Close()
		require.NoError(t, db.AutoMigrate())

		cfg := &config.Config{Storage: config.StorageConfig{Backend: config.StorageBackendDatabase, Timeout: time.Second}}
		repo, _, err := NewFactory(cfg, WithDatabase(db)).Create(ctx)
		require.NoError(t, err)

		require.NoError(t, repo.Save(ctx, shared.StateKeyProducts, []byte(`[]`)))
		data, err := repo.Load(ctx, shared.StateKeyProducts)
		require.NoError(t, err)
		assert.Equal(t, `[]`, string(data))
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		port, err := strconv.Atoi(mr.Port())
		require.NoError(t, err)

		cfg := &config.Config{
			Storage: config.StorageConfig{Backend: config.StorageBackendRedis, KeyPrefix: "t:"},
			Redis:   config.RedisConfig{Host: mr.Host(), Port: port},
		}
		repo, closer, err := NewFactory(cfg).Create(ctx)
		require.NoError(t, err)
		defer closer.Close()

		require.NoError(t, repo.Save(ctx, shared.StateKeyCategories, []byte(`[]`)))
		assert.True(t, mr.Exists("t:categories"))
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Backend: "s3"}}
		_, _, err := NewFactory(cfg).Create(ctx)
		assert.Error(t, err)
	})
}

type slowRepository struct{ shared.StateRepository }

func (slowRepository) Load(ctx context.Context, _ string) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithTimeout(t *testing.T) {
	base := persistence.NewMemoryStateRepository()
	assert.Same(t, base, WithTimeout(base, 0))

	repo := WithTimeout(slowRepository{base}, 10*time.Millisecond)
	_, err := repo.Load(context.Background(), "products")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
