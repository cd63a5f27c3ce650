package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront-admin/internal/cache"
	"github.com/utafrali/storefront-admin/internal/config"
	"github.com/utafrali/storefront-admin/internal/event"
	handler "github.com/utafrali/storefront-admin/internal/handler/http"
	"github.com/utafrali/storefront-admin/internal/migrations"
	"github.com/utafrali/storefront-admin/internal/repository"
	"github.com/utafrali/storefront-admin/internal/repository/memory"
	"github.com/utafrali/storefront-admin/internal/repository/postgres"
	"github.com/utafrali/storefront-admin/internal/service"
	"github.com/utafrali/storefront-admin/internal/storage"
	"github.com/utafrali/storefront-admin/internal/storage/cdn"
	storagemem "github.com/utafrali/storefront-admin/internal/storage/memory"
	"github.com/utafrali/storefront-admin/pkg/database"
	"github.com/utafrali/storefront-admin/pkg/health"
	"github.com/utafrali/storefront-admin/pkg/httpclient"
	pkgkafka "github.com/utafrali/storefront-admin/pkg/kafka"
	"github.com/utafrali/storefront-admin/pkg/tracing"
)

// localAssetBase prefixes image URLs when no asset store is configured.
const localAssetBase = "/assets"

// App wires together all dependencies and runs the admin service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	redis          *redis.Client
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

type repositories struct {
	brands   repository.BrandRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
}

// NewApp creates a new application instance, initializing all dependencies.
// Dependencies already opened are closed again when a later one fails.
func NewApp(cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	// Initialize OpenTelemetry tracing.
	a.tracerShutdown, err = tracing.InitTracer(ctx, cfg.Tracing(handler.ServiceName))
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	healthHandler := health.NewHandler()

	repos, err := a.openRepositories(ctx, reg, healthHandler)
	if err != nil {
		return nil, err
	}

	// Entity cache.
	var entityCache cache.Cache = cache.Noop{}
	if cfg.RedisEnabled {
		a.redis, err = database.NewRedisClient(ctx, cfg.Redis(), logger)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))
		entityCache = cache.NewRedis(a.redis, cfg.CacheTTL(), logger)
		healthHandler.RegisterNonCritical("redis", func(ctx context.Context) error {
			return a.redis.Ping(ctx).Err()
		})
	}

	// Domain events.
	var publisher event.Publisher = event.Noop{}
	if cfg.KafkaEnabled {
		kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
		a.producer = pkgkafka.NewProducer(kafkaCfg, pkgkafka.NewProducerMetrics(reg), logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
		publisher = event.NewProducer(a.producer, logger)
		healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
			return a.producer.Ping(ctx)
		})
	}

	assets, err := openAssetStore(cfg, reg, logger)
	if err != nil {
		return nil, err
	}

	// Build the dependency graph.
	var productOpts []service.ProductOption
	if cfg.AssetVerifyImages {
		productOpts = append(productOpts, service.WithImageVerification())
	}
	services := handler.Services{
		Brands:   service.NewBrandService(repos.brands, entityCache, publisher, logger),
		Products: service.NewProductService(repos.products, repos.brands, assets, entityCache, publisher, logger, productOpts...),
		Orders:   service.NewOrderService(repos.orders, repos.products, publisher, service.NewMetrics(reg), logger),
	}

	// HTTP router.
	router := handler.NewRouter(services, healthHandler, reg, logger, cfg.PprofAllowedCIDRs)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return a, nil
}

// openRepositories selects the storage driver. The postgres driver connects,
// applies migrations when enabled and exports pool statistics.
func (a *App) openRepositories(ctx context.Context, reg prometheus.Registerer, healthHandler *health.Handler) (repositories, error) {
	cfg := a.cfg
	if cfg.StorageDriver == config.StorageDriverMemory {
		a.logger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		return repositories{brands: store.Brands, products: store.Products, orders: store.Orders}, nil
	}

	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, a.logger)
	if err != nil {
		return repositories{}, fmt.Errorf("connect to postgres: %w", err)
	}
	a.pool = pool
	a.logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	reg.MustRegister(database.NewPoolStatsCollector(pool, handler.ServiceName))

	if cfg.RunMigrations {
		if err := database.RunMigrations(ctx, pool, migrations.FS, a.logger); err != nil {
			return repositories{}, fmt.Errorf("run migrations: %w", err)
		}
		a.logger.Info("database migrations completed")
	}

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, a.logger)
	}

	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})

	return repositories{
		brands:   postgres.NewBrandRepository(pool),
		products: postgres.NewProductRepository(pool),
		orders:   postgres.NewOrderRepository(pool),
	}, nil
}

// openAssetStore returns the CDN-backed store when a base URL is configured.
// Existence checks go through a retrying client behind a circuit breaker.
func openAssetStore(cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (storage.Storage, error) {
	if cfg.AssetBaseURL == "" {
		return storagemem.NewPermissive(localAssetBase), nil
	}

	client := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("asset-store"),
		httpclient.NewBreakerMetrics(reg),
		logger,
	)
	assets, err := cdn.New(cfg.AssetBaseURL, client)
	if err != nil {
		return nil, fmt.Errorf("configure asset store: %w", err)
	}
	logger.Info("asset store configured", slog.String("base_url", cfg.AssetBaseURL))
	return assets, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.close()
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in order: the HTTP server drains
// first so in-flight spans and events are flushed afterwards.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.close(); err != nil {
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

// close releases everything except the HTTP server.
func (a *App) close() error {
	var errs []error

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.pool != nil {
		a.pool.Close()
	}

	return errors.Join(errs...)
}
