//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/brewline/storefront/internal/domain/shared"
	"github.com/brewline/storefront/internal/infrastructure/config"
	"github.com/brewline/storefront/internal/infrastructure/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

// newPostgresDatabase starts a throwaway postgres and applies the embedded migrations
func newPostgresDatabase(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:       "postgres",
		Host:         host,
		Port:         port.Int(),
		User:         "postgres",
		Password:     "storefront",
		DBName:       "storefront_test",
		SSLMode:      "disable",
		MaxOpenConns: 5,
		MaxIdleConns: 2,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	migrator, err := migration.New(sqlDB, db.Driver, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	// the migrator owns sqlDB; closing it closes db as well
	t.Cleanup(func() { _ = migrator.Close() })
	return db
}

func TestGormStateRepository_Postgres(t *testing.T) {
	ctx := context.Background()
	repo := NewGormStateRepository(newPostgresDatabase(t).DB)

	_, err := repo.Load(ctx, shared.StateKeySettings)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, repo.Save(ctx, shared.StateKeySettings, []byte(`{"shopName":"Brew"}`)))
	require.NoError(t, repo.Save(ctx, shared.StateKeySettings, []byte(`{"shopName":"Brew Line"}`)))

	data, err := repo.Load(ctx, shared.StateKeySettings)
	require.NoError(t, err)
	assert.JSONEq(t, `{"shopName":"Brew Line"}`, string(data))

	var version int64
	require.NoError(t, repo.db.Table("storefront_state").
		Select("version").Where("state_key = ?", shared.StateKeySettings).Scan(&version).Error)
	assert.Equal(t, int64(2), version)

	assert.NoError(t, repo.Ping(ctx))
}
