package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	appauth "github.com/brewline/storefront/internal/application/auth"
	appcart "github.com/brewline/storefront/internal/application/cart"
	appcatalog "github.com/brewline/storefront/internal/application/catalog"
	appcheckout "github.com/brewline/storefront/internal/application/checkout"
	appsettings "github.com/brewline/storefront/internal/application/settings"
	appshared "github.com/brewline/storefront/internal/application/shared"
	"github.com/brewline/storefront/internal/infrastructure/auth"
	"github.com/brewline/storefront/internal/infrastructure/cache"
	"github.com/brewline/storefront/internal/infrastructure/config"
	"github.com/brewline/storefront/internal/infrastructure/event"
	"github.com/brewline/storefront/internal/infrastructure/logger"
	"github.com/brewline/storefront/internal/infrastructure/migration"
	"github.com/brewline/storefront/internal/infrastructure/persistence"
	"github.com/brewline/storefront/internal/infrastructure/scheduler"
	"github.com/brewline/storefront/internal/infrastructure/seed"
	"github.com/brewline/storefront/internal/infrastructure/statestore"
	"github.com/brewline/storefront/internal/infrastructure/storage"
	"github.com/brewline/storefront/internal/infrastructure/telemetry"
	"github.com/brewline/storefront/internal/interfaces/http/handler"
	"github.com/brewline/storefront/internal/interfaces/http/middleware"
	"github.com/brewline/storefront/internal/interfaces/http/router"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	_ "github.com/brewline/storefront/docs"
)

//	@title			Storefront API
//	@version		1.0
//	@description	Coffee shop menu, session carts and WhatsApp checkout

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		os.Exit(hashPassword(os.Args[2:]))
	}
	os.Exit(run())
}

// run returns the process exit code once the server has shut down,
// after the deferred closers have released storage and connections
func run() int {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()

	// Log export needs a logger of its own, so the app logger is rebuilt once it exists
	logProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize log exporter", zap.Error(err))
	}
	if logProvider.IsEnabled() {
		otelCore := telemetry.NewZapOTELCore(cfg.Telemetry.ServiceName, logProvider, logger.ParseLevel(cfg.Log.Level))
		if log, err = logger.New(logCfg, otelCore); err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting storefront",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("storage", cfg.Storage.Backend),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           cfg.Profiler.Enabled,
		ServerAddress:     cfg.Profiler.ServerAddress,
		ApplicationName:   cfg.Profiler.ApplicationName,
		BasicAuthUser:     cfg.Profiler.BasicAuthUser,
		BasicAuthPassword: cfg.Profiler.BasicAuthPassword,
	}, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	if profiler.IsEnabled() && cfg.Profiler.SpanProfiles {
		tracerProvider.EnableSpanProfiles()
	}

	storeMetrics, err := telemetry.NewStoreMetrics(meterProvider.Meter("storefront"), log)
	if err != nil {
		log.Fatal("Failed to create store metrics", zap.Error(err))
	}

	// Durable state
	var db *persistence.Database
	if cfg.Storage.Backend == config.StorageBackendDatabase {
		db = openDatabase(cfg, log)
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", zap.Error(err))
			}
		}()
	}

	repo, repoCloser, err := statestore.NewFactory(cfg,
		statestore.WithDatabase(db),
		statestore.WithLogger(log),
	).Create(ctx)
	if err != nil {
		log.Fatal("Failed to open state storage", zap.Error(err))
	}
	defer closeQuietly(log, "state storage", repoCloser)

	snapshots := appshared.NewSnapshotWriter(repo, storeMetrics, log)

	// Events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(storeMetrics)
	if cfg.NATS.EventsEnabled {
		forwarder, err := event.NewNATSForwarder(ctx, cfg.NATS.URL, cfg.NATS.EventsStream, log)
		if err != nil {
			log.Fatal("Failed to enable event forwarding", zap.Error(err))
		}
		defer closeQuietly(log, "event forwarder", forwarder)
		eventBus.Subscribe(forwarder)
	}

	// Stores
	catalogOpts := []appcatalog.StoreOption{
		appcatalog.WithImageHost(newImageHost(ctx, cfg, log)),
		appcatalog.WithEventPublisher(eventBus),
		appcatalog.WithLogger(log),
	}
	if cfg.Catalog.SeedFile != "" {
		catalogOpts = append(catalogOpts, appcatalog.WithSeed(seed.NewYAMLSource(cfg.Catalog.SeedFile)))
	}
	catalogStore := appcatalog.NewStore(snapshots, catalogOpts...)
	if warnings := catalogStore.Load(ctx); len(warnings) > 0 {
		log.Warn("Catalog loaded with warnings", zap.Strings("warnings", warnings))
	}
	settingsStore := appsettings.NewStore(snapshots, log)
	if warnings := settingsStore.Load(ctx); len(warnings) > 0 {
		log.Warn("Settings loaded with warnings", zap.Strings("warnings", warnings))
	}
	products, categories := catalogStore.Counts()
	log.Info("Catalog ready", zap.Int("products", products), zap.Int("categories", categories))

	// Cart and checkout
	carts := appcart.NewService(catalogStore,
		appcart.WithEventPublisher(eventBus),
		appcart.WithSessionTTL(cfg.Cart.SessionTTL),
		appcart.WithLogger(log),
	)
	if err := storeMetrics.ObserveActiveCarts(carts.ActiveSessions); err != nil {
		log.Warn("Failed to register active carts gauge", zap.Error(err))
	}
	checkoutService := appcheckout.NewService(carts, settingsStore, appcheckout.Config{
		ChannelURL:    cfg.Checkout.ChannelURL,
		DefaultLocale: cfg.Checkout.DefaultLocale,
	}, log)

	// Admin auth
	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = uuid.NewString() + uuid.NewString()
		log.Warn("No JWT secret configured; using a per-process secret, tokens will not survive a restart")
	}
	if cfg.Admin.PasswordHash == "" {
		log.Warn("No admin password hash configured; admin login is disabled",
			zap.String("hint", "run `server hash-password <password>` and set SHOP_ADMIN_PASSWORD_HASH"))
	}
	authService := appauth.NewService(
		appauth.Admin{Username: cfg.Admin.Username, PasswordHash: cfg.Admin.PasswordHash},
		auth.NewJWTService(cfg.JWT),
		newTokenBlacklist(ctx, cfg, log),
		log,
	)

	// Background tasks
	sched := scheduler.New(log)
	if err := sched.Register(scheduler.CartSweepTask(carts, cfg.Cart.SweepInterval)); err != nil {
		log.Fatal("Failed to register cart sweeper", zap.Error(err))
	}
	sched.Start(ctx)

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Tracing - Server span, request attributes, error status
	// 4. Logger - Log requests
	// 5. Metrics - Request counters and latencies
	// 6. Security - Add security headers
	// 7. CORS - Handle cross-origin requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.TracingAttributeInjector())
	engine.Use(middleware.SpanErrorMarker())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{MeterProvider: meterProvider, Logger: log}))
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	guards := router.Guards{
		RequireAdmin:   middleware.JWTAuthMiddleware(authService, log),
		BodyLimit:      cfg.HTTP.MaxBodySize,
		AdminBodyLimit: cfg.HTTP.MaxUploadSize,
		Swagger: middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		},
	}
	if cfg.HTTP.RateLimitEnabled {
		guards.CartLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer guards.CartLimiter.Stop()
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		guards.AuthLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer guards.AuthLimiter.Stop()
	}

	pingers := map[string]handler.Pinger{"catalog": catalogStore, "settings": settingsStore}
	if db != nil {
		pingers["database"] = db
	}
	router.Setup(engine, router.Handlers{
		Catalog:  handler.NewCatalogHandler(catalogStore),
		Admin:    handler.NewAdminCatalogHandler(catalogStore, cfg.ImageHost.MaxBytes),
		Settings: handler.NewSettingsHandler(settingsStore),
		Cart:     handler.NewCartHandler(carts, checkoutService),
		Auth:     handler.NewAuthHandler(authService),
		Health:   handler.NewHealthHandler(catalogStore, pingers),
	}, guards)

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM
	wait := gfshutdown.GracefulShutdown(ctx, 30*time.Second, map[string]gfshutdown.Operation{
		"storefront": func(shutdownCtx context.Context) error {
			log.Info("Shutting down server...")
			var errs []error
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("http server: %w", err))
			}
			if err := sched.Stop(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("scheduler: %w", err))
			}
			if err := profiler.Stop(); err != nil {
				errs = append(errs, fmt.Errorf("profiler: %w", err))
			}
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("meter provider: %w", err))
			}
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("tracer provider: %w", err))
			}
			if err := logProvider.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("log provider: %w", err))
			}
			return errors.Join(errs...)
		},
	})

	exitCode := <-wait
	if exitCode != 0 {
		log.Error("Server shutdown did not complete cleanly", zap.Int("exit_code", exitCode))
		return exitCode
	}
	log.Info("Server exited gracefully")
	return 0
}

// openDatabase connects, installs query tracing and applies the embedded migrations
func openDatabase(cfg *config.Config, log *zap.Logger) *persistence.Database {
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithSQL(cfg.Telemetry.DBLogFullSQL),
	)
	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(gormLog))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully", zap.String("driver", db.Driver))

	dbSystem := "sqlite"
	if db.Driver == "postgres" {
		dbSystem = "postgresql"
	}
	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log)
	if err := tracing.Register(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get database handle", zap.Error(err))
	}
	// the migrator is not closed: closing it would close the shared connection
	migrator, err := migration.New(sqlDB, db.Driver, log)
	if err != nil {
		log.Fatal("Failed to prepare migrations", zap.Error(err))
	}
	if err := migrator.Up(); err != nil {
		log.Fatal("Failed to apply migrations", zap.Error(err))
	}
	return db
}

func newImageHost(ctx context.Context, cfg *config.Config, log *zap.Logger) appcatalog.ImageHost {
	if cfg.ImageHost.Provider != "s3" {
		log.Warn("Using the stub image host; uploads are kept in memory")
		return storage.NewStubImageHost(cfg.ImageHost.PublicBaseURL, cfg.ImageHost.MaxBytes, cfg.ImageHost.AllowedTypes)
	}

	host, err := storage.NewS3ImageHost(&cfg.ImageHost, storage.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to create image host", zap.Error(err))
	}
	if err := host.EnsureBucket(ctx); err != nil {
		log.Warn("Image bucket is not reachable yet", zap.String("bucket", host.Bucket()), zap.Error(err))
	}
	return host
}

func newTokenBlacklist(ctx context.Context, cfg *config.Config, log *zap.Logger) auth.TokenBlacklist {
	if cfg.JWT.BlacklistBackend != "redis" {
		return auth.NewInMemoryTokenBlacklist()
	}
	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis for the token blacklist", zap.Error(err))
	}
	return auth.NewRedisTokenBlacklist(client)
}

func closeQuietly(log *zap.Logger, what string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.Error("Error closing "+what, zap.Error(err))
	}
}

// hashPassword prints the bcrypt hash for SHOP_ADMIN_PASSWORD_HASH
func hashPassword(args []string) int {
	if len(args) != 1 || args[0] == "" {
		fmt.Fprintln(os.Stderr, "usage: server hash-password <password>")
		return 2
	}
	hash, err := auth.HashPassword(args[0], auth.DefaultBcryptCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println(hash)
	return 0
}
