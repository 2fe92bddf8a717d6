package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/PosGo/internal/client"
	"github.com/utafrali/PosGo/internal/config"
	"github.com/utafrali/PosGo/internal/event"
	handler "github.com/utafrali/PosGo/internal/handler/http"
	"github.com/utafrali/PosGo/internal/repository"
	"github.com/utafrali/PosGo/internal/repository/memory"
	redisrepo "github.com/utafrali/PosGo/internal/repository/redis"
	"github.com/utafrali/PosGo/internal/service"
	"github.com/utafrali/PosGo/internal/snapshot"
	"github.com/utafrali/PosGo/pkg/health"
	"github.com/utafrali/PosGo/pkg/httpclient"
	pkgkafka "github.com/utafrali/PosGo/pkg/kafka"
	"github.com/utafrali/PosGo/pkg/middleware"
	"github.com/utafrali/PosGo/pkg/tracing"
)

// App wires together all dependencies and runs the POS terminal.
type App struct {
	cfg             *config.Config
	logger          *slog.Logger
	rdb             *redis.Client
	producer        *pkgkafka.Producer
	inventory       *service.InventoryService
	httpServer      *http.Server
	tracingShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	app := &App{cfg: cfg, logger: logger}

	// Tracing.
	tracingCfg := tracing.DefaultConfig("pos-terminal")
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTLPEndpoint
	tracingCfg.SampleRate = cfg.TraceSample
	tracingCfg.Enabled = cfg.TracingEnabled
	shutdown, err := tracing.InitTracer(ctx, tracingCfg)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	app.tracingShutdown = shutdown

	// Cart store.
	var repo repository.CartRepository
	switch cfg.CartStore {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("connected to Redis",
			slog.String("addr", cfg.RedisAddr),
			slog.Int("db", cfg.RedisDB),
		)
		app.rdb = rdb
		repo = redisrepo.NewCartRepository(rdb, time.Duration(cfg.CartTTL)*time.Hour)
	default:
		repo = memory.NewCartRepository()
		logger.Info("using in-memory cart store")
	}

	// Event stream.
	var publisher service.EventPublisher = service.NopPublisher{}
	if cfg.KafkaEnabled {
		kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
		app.producer = pkgkafka.NewProducer(kafkaCfg, logger)
		publisher = event.NewProducer(app.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Billing backend client behind a circuit breaker.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.BackendTimeout
	base := httpclient.New(clientCfg)
	breaker := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig("billing-backend"), logger)
	billing := client.NewBillingClient(breaker, cfg.BackendURL, logger)

	// Core services.
	snap := snapshot.NewStore()
	guard := service.NewCheckoutGuard()
	inventorySvc := service.NewInventoryService(snap, billing, logger)
	cartSvc := service.NewCartService(repo, snap, publisher, guard, logger)
	checkoutSvc := service.NewCheckoutService(repo, billing, inventorySvc, publisher, guard, logger)
	app.inventory = inventorySvc

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("backend", func(ctx context.Context) error {
		_, err := billing.FetchInventory(ctx)
		return err
	})
	if app.rdb != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return app.rdb.Ping(ctx).Err()
		})
	}
	if app.producer != nil {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return app.producer.Ping(ctx)
		})
	}

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(handler.RouterDeps{
		CartService:      cartSvc,
		InventoryService: inventorySvc,
		CheckoutService:  checkoutSvc,
		BillingClient:    billing,
		HealthHandler:    healthHandler,
		Logger:           logger,
		CORS:             corsCfg,
		PprofCIDRs:       cfg.PprofCIDRs,
	})

	app.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	// Warm the inventory snapshot; an unreachable backend is not fatal at
	// startup, the terminal serves an empty list until the next refresh.
	warmCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	if _, err := a.inventory.Refresh(warmCtx); err != nil {
		a.logger.Warn("initial inventory refresh failed, starting with empty snapshot",
			slog.String("error", err.Error()),
		)
	}
	cancel()

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
		}
	}

	if a.tracingShutdown != nil {
		if err := a.tracingShutdown(shutdownCtx); err != nil {
			a.logger.Error("tracing shutdown error", slog.String("error", err.Error()))
		}
	}

	a.logger.Info("application shutdown complete")
	return nil
}
