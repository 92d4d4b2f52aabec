package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/database"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/health"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/httpclient"
	pkgkafka "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/kafka"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/tracing"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/config"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/event"
	handler "github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/handler/http"
	tokenstore "github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/repository/redis"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/sender"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/sender/logging"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/sender/push"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/notification/internal/service"
)

// App wires together all dependencies and runs the notification service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	redis          *redis.Client
	consumer       *pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.Init(ctx, "notification", cfg.Environment, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}
	healthHandler := health.NewHandler()

	a.redis, err = database.NewRedisClient(ctx, cfg.Redis, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.Redis.Addr))
	healthHandler.RegisterCritical("redis", func(ctx context.Context) error {
		return a.redis.Ping(ctx).Err()
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	var s sender.Sender
	switch cfg.Sender {
	case config.SenderLog:
		logger.Warn("push delivery disabled, notifications are only logged")
		s = logging.NewSender(logger)
	default:
		client := httpclient.NewCircuitBreakerClient(
			httpclient.New(cfg.HTTPClient),
			httpclient.DefaultCircuitBreakerConfig("push-gateway"),
			logger,
		)
		s = push.NewSender(client, cfg.Push, logger)
	}

	dispatcher := service.NewDispatcher(tokenstore.NewTokenStore(a.redis), s, logger)
	eventConsumer := event.NewConsumer(dispatcher, logger)

	// Processed event IDs live in Redis so a redelivered event does not
	// notify twice, even across restarts.
	a.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.ConsumerGroup,
		Topics:  event.Topics(),
	}, pkgkafka.IdempotentHandler(
		pkgkafka.NewRedisIdempotencyStore(a.redis, cfg.ConsumerGroup, 24*time.Hour),
		eventConsumer.Handle,
		logger,
	), logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler.NewRouter(healthHandler, logger),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// Run starts the HTTP server and the event consumer, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		if err := a.consumer.Start(ctx); err != nil {
			errCh <- fmt.Errorf("notification consumer: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.logger.Error("component failed", slog.String("error", err.Error()))
		_ = a.Shutdown()
		return err
	}

	return a.Shutdown()
}

// Shutdown stops components in dependency order: HTTP, tracer, consumer,
// Redis.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}

	tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer tracerCancel()
	if err := a.tracerShutdown(tracerCtx); err != nil {
		errs = append(errs, fmt.Errorf("tracer: %w", err))
	}

	if err := a.consumer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("notification consumer: %w", err))
	}
	if err := a.redis.Close(); err != nil {
		errs = append(errs, fmt.Errorf("redis: %w", err))
	}

	for _, err := range errs {
		a.logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
