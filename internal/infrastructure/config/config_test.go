package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks the variables these tests touch; viper treats empty values as unset
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"SHOP_APP_NAME", "SHOP_APP_ENV", "SHOP_APP_PORT",
		"SHOP_DATABASE_DRIVER", "SHOP_DATABASE_PASSWORD", "SHOP_DATABASE_SSLMODE",
		"SHOP_DATABASE_MAX_OPEN_CONNS", "SHOP_DATABASE_MAX_IDLE_CONNS",
		"SHOP_STORAGE_BACKEND", "SHOP_JWT_SECRET", "SHOP_JWT_BLACKLIST_BACKEND",
		"SHOP_ADMIN_USERNAME", "SHOP_ADMIN_PASSWORD_HASH",
		"SHOP_IMAGE_HOST_PROVIDER", "SHOP_IMAGE_HOST_MAX_BYTES",
		"SHOP_CART_SESSION_TTL", "SHOP_SWAGGER_ENABLED", "SHOP_SWAGGER_REQUIRE_AUTH",
		"SHOP_TELEMETRY_SAMPLING_RATIO",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, StorageBackendDatabase, cfg.Storage.Backend)
		assert.Equal(t, "storefront:state:", cfg.Storage.KeyPrefix)
		assert.Equal(t, "memory", cfg.JWT.BlacklistBackend)
		assert.Equal(t, "admin", cfg.Admin.Username)
		assert.Equal(t, "stub", cfg.ImageHost.Provider)
		assert.Equal(t, int64(5<<20), cfg.ImageHost.MaxBytes)
		assert.Contains(t, cfg.ImageHost.AllowedTypes, "image/png")
		assert.Equal(t, 12*time.Hour, cfg.Cart.SessionTTL)
		assert.Equal(t, "https://wa.me", cfg.Checkout.ChannelURL)
		assert.Equal(t, "en", cfg.Checkout.DefaultLocale)
		assert.Equal(t, cfg.ImageHost.MaxBytes+(1<<20), cfg.HTTP.MaxUploadSize)
		assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "X-Cart-Session")
		assert.Equal(t, "storefront", cfg.Profiler.ApplicationName)
	})

	t.Run("loads values from environment variables with SHOP prefix", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHOP_APP_NAME", "brew-line")
		t.Setenv("SHOP_APP_PORT", "9000")
		t.Setenv("SHOP_DATABASE_DRIVER", "postgres")
		t.Setenv("SHOP_STORAGE_BACKEND", "redis")
		t.Setenv("SHOP_ADMIN_USERNAME", "barista")
		t.Setenv("SHOP_IMAGE_HOST_MAX_BYTES", "1024")
		t.Setenv("SHOP_CART_SESSION_TTL", "30m")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "brew-line", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, StorageBackendRedis, cfg.Storage.Backend)
		assert.Equal(t, "barista", cfg.Admin.Username)
		assert.Equal(t, int64(1024), cfg.ImageHost.MaxBytes)
		assert.Equal(t, 30*time.Minute, cfg.Cart.SessionTTL)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHOP_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("SHOP_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("rejects unknown storage backend", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHOP_STORAGE_BACKEND", "localstorage")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.backend")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHOP_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects unknown image host provider", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHOP_IMAGE_HOST_PROVIDER", "imgbb")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "image_host.provider")
	})

	t.Run("rejects too short cart session ttl", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHOP_CART_SESSION_TTL", "10s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cart.session_ttl")
	})

	t.Run("rejects sampling ratio out of range", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHOP_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func(t *testing.T) {
		clearEnv(t)
		t.Setenv("SHOP_APP_ENV", "production")
		t.Setenv("SHOP_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		t.Setenv("SHOP_ADMIN_PASSWORD_HASH", "$2a$12$abcdefghijklmnopqrstuv")
		t.Setenv("SHOP_IMAGE_HOST_PROVIDER", "s3")
		t.Setenv("SHOP_SWAGGER_ENABLED", "false")
	}

	t.Run("passes validation with valid production config", func(t *testing.T) {
		setValidProductionBase(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SHOP_JWT_SECRET", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SHOP_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})

	t.Run("requires admin password hash in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SHOP_ADMIN_PASSWORD_HASH", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "admin.password_hash")
	})

	t.Run("rejects stub image host in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SHOP_IMAGE_HOST_PROVIDER", "stub")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "image_host.provider cannot be 'stub'")
	})

	t.Run("requires postgres password and ssl in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SHOP_DATABASE_DRIVER", "postgres")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required")

		t.Setenv("SHOP_DATABASE_PASSWORD", "secure-password")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")

		t.Setenv("SHOP_DATABASE_SSLMODE", "require")
		_, err = Load()
		require.NoError(t, err)
	})

	t.Run("fails if swagger enabled without protection in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SHOP_SWAGGER_ENABLED", "true")
		t.Setenv("SHOP_SWAGGER_REQUIRE_AUTH", "false")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger endpoint must be disabled")
	})

	t.Run("passes with swagger enabled and require_auth in production", func(t *testing.T) {
		setValidProductionBase(t)
		t.Setenv("SHOP_SWAGGER_ENABLED", "true")
		t.Setenv("SHOP_SWAGGER_REQUIRE_AUTH", "true")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.RequireAuth)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "shop", Password: "pw", DBName: "storefront", SSLMode: "disable"}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost:5432")
		assert.Contains(t, dsn, "storefront")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "user", Password: "pass@word#123", DBName: "db", SSLMode: "disable"}
		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", RedisConfig{Host: "cache", Port: 6380}.Addr())
}
