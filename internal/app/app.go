package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MuzammilBaloch-22/Cakelora/internal/config"
	"github.com/MuzammilBaloch-22/Cakelora/internal/event"
	handler "github.com/MuzammilBaloch-22/Cakelora/internal/handler/http"
	"github.com/MuzammilBaloch-22/Cakelora/internal/repository"
	badgerrepo "github.com/MuzammilBaloch-22/Cakelora/internal/repository/badger"
	"github.com/MuzammilBaloch-22/Cakelora/internal/repository/memory"
	"github.com/MuzammilBaloch-22/Cakelora/internal/repository/postgres"
	redisrepo "github.com/MuzammilBaloch-22/Cakelora/internal/repository/redis"
	"github.com/MuzammilBaloch-22/Cakelora/internal/service"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/database"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/health"
	pkgkafka "github.com/MuzammilBaloch-22/Cakelora/pkg/kafka"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/middleware"
	"github.com/MuzammilBaloch-22/Cakelora/pkg/tracing"
)

const (
	serviceName    = "cakelora-storefront"
	serviceVersion = "0.1.0"

	badgerGCInterval = 10 * time.Minute
)

// slotBackend is a slot store that can report its health.
type slotBackend interface {
	repository.SlotStore
	repository.Pinger
}

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	slot           slotBackend
	badger         *badgerrepo.SlotStore
	sessions       *service.CartSessions
	producer       *pkgkafka.Producer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize OpenTelemetry tracing.
	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.OTELEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, fmt.Errorf("parse trusted proxies: %w", err)
	}

	// Configure slow query logging.
	if cfg.SlowQueryThresholdMs > 0 {
		database.SetSlowQueryLogging(time.Duration(cfg.SlowQueryThresholdMs)*time.Millisecond, logger)
	}

	// Open the cart snapshot store.
	slot, err := openSlotStore(ctx, cfg, logger)
	if err != nil {
		_ = tracerShutdown(context.Background())
		return nil, err
	}

	// Initialize Kafka producer when brokers are configured.
	var (
		producer *pkgkafka.Producer
		events   event.Publisher = event.NoopPublisher{}
	)
	if cfg.KafkaEnabled() {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events = event.NewProducer(producer, logger)
		if err := producer.Ping(ctx); err != nil {
			logger.Warn("kafka brokers unreachable, events will be dropped until they recover",
				slog.Any("brokers", cfg.KafkaBrokers),
				slog.String("error", err.Error()),
			)
		} else {
			logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
		}
	} else {
		logger.Info("kafka disabled, domain events are not published")
	}

	// Build the dependency graph.
	catalogRepo := memory.NewCatalogRepository()
	catalogService := service.NewCatalogService(catalogRepo)
	sessions := service.NewCartSessions(slot, catalogRepo, events, logger, cfg.SessionIdle())
	orderService := service.NewCustomOrderService(events, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register(cfg.StorageBackend, slot.Ping)

	// HTTP router.
	router := handler.NewRouter(
		catalogService,
		sessions,
		orderService,
		healthHandler,
		middleware.DefaultCORSConfig(cfg.Environment, cfg.CORSAllowedOrigins),
		middleware.RateLimitConfig{
			PerMinute:      cfg.CustomOrderPerMinute,
			Burst:          cfg.CustomOrderBurst,
			TrustedProxies: trustedProxies,
		},
		logger,
	)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	a := &App{
		cfg:            cfg,
		logger:         logger,
		slot:           slot,
		sessions:       sessions,
		producer:       producer,
		httpServer:     httpServer,
		tracerShutdown: tracerShutdown,
	}
	if b, ok := slot.(*badgerrepo.SlotStore); ok {
		a.badger = b
	}
	return a, nil
}

// openSlotStore connects the backend named by cfg.StorageBackend.
func openSlotStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (slotBackend, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory cart storage, carts are lost on restart")
		return memory.NewSlotStore(), nil

	case config.BackendBadger:
		store, err := badgerrepo.Open(badgerrepo.Options{Dir: cfg.BadgerDir, Logger: logger})
		if err != nil {
			return nil, err
		}
		logger.Info("opened Badger cart store", slog.String("dir", cfg.BadgerDir))
		return store, nil

	case config.BackendRedis:
		rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		return redisrepo.NewSlotStore(rdb, cfg.CartTTLDuration()), nil

	case config.BackendPostgres:
		pool, err := database.NewPostgresPool(ctx, database.DefaultPostgresConfig(cfg.PostgresDSN), logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		logger.Info("connected to PostgreSQL")
		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool); err != nil {
			logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}

		store := postgres.NewSlotStore(pool)
		if err := store.Migrate(ctx, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("database migrations completed")
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// Handler returns the HTTP handler. Used by tests.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and background workers, and blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	bgCtx, stopBackground := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	idle := a.cfg.SessionIdle()
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.sessions.Run(bgCtx, idle/2)
	}()

	if a.badger != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.badger.RunGC(bgCtx, badgerGCInterval)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	stopBackground()
	wg.Wait()

	if err := a.Shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Tracer (flush pending spans from drained requests)
// 3. Kafka producer
// 4. Cart snapshot store
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests.
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Flush pending spans.
	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 3. Close Kafka producer.
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	// 4. Close the snapshot store last so carts written during the drain land.
	if err := a.slot.Close(); err != nil {
		a.logger.Error("cart store close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
