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
	"github.com/robfig/cron/v3"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/auth"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/database"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/health"
	pkgkafka "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/kafka"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/middleware"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/tracing"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/validator"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/config"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/event"
	handler "github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/handler/http"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/repository"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/repository/memory"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/repository/postgres"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/service"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/migrations"
)

const consumerGroup = "booking-service"

// App wires together all dependencies and runs the booking service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	pool           *pgxpool.Pool
	producer       *pkgkafka.Producer
	consumer       *pkgkafka.Consumer
	httpServer     *http.Server
	scheduler      *cron.Cron
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.Init(ctx, "booking", cfg.Environment, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}
	healthHandler := health.NewHandler()

	var (
		shops        repository.ShopRepository
		reservations repository.ReservationRepository
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory store; reservations are lost on restart and slots are not unique")
		store := memory.NewStore()
		shops, reservations = store, store.Reservations()
	default:
		pool, err := database.NewPostgresPool(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		a.pool = pool

		if err := database.RegisterPoolMetrics(prometheus.DefaultRegisterer, pool, "booking"); err != nil {
			logger.Warn("pool metrics not registered", slog.String("error", err.Error()))
		}
		if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		database.SetSlowQueryLogging(cfg.SlowQueryThreshold, logger)

		shops = postgres.NewShopRepository(pool)
		reservations = postgres.NewReservationRepository(pool)
		healthHandler.RegisterCritical("postgres", pool.Ping)
	}

	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	if err := a.producer.Ping(ctx); err != nil {
		logger.Warn("kafka unreachable, continuing in degraded mode", slog.String("error", err.Error()))
	}
	healthHandler.RegisterNonCritical("kafka", a.producer.Ping)

	bookingService := service.NewBookingService(
		shops,
		reservations,
		event.NewProducer(a.producer, logger),
		logger,
		cfg.CancelledBlocksSlot,
	)

	eventConsumer := event.NewConsumer(bookingService, logger)
	a.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: consumerGroup,
		Topics:  []string{event.TopicReviewCreated, event.TopicShopRatingUpdated},
	}, pkgkafka.IdempotentHandler(pkgkafka.NewMemoryIdempotencyStore(24*time.Hour), eventConsumer.Handle, logger), logger)

	a.scheduler = cron.New(cron.WithLocation(cfg.Location()))
	if _, err := a.scheduler.AddFunc(cfg.ReminderSchedule, func() {
		a.sendReminders(bookingService)
	}); err != nil {
		return nil, fmt.Errorf("schedule reminders: %w", err)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	router := handler.NewRouter(bookingService, healthHandler, auth.NewJWTManager(cfg.JWT), handler.RouterConfig{
		CORS:        cors,
		CommitRPS:   cfg.CommitRateRPS,
		CommitBurst: cfg.CommitRateBurst,
	}, logger)

	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// sendReminders notifies customers of tomorrow's confirmed visits.
func (a *App) sendReminders(svc *service.BookingService) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	day := time.Now().In(a.cfg.Location()).AddDate(0, 0, 1).Format(validator.DateLayout)
	sent, err := svc.SendReminders(ctx, day)
	if err != nil {
		a.logger.Error("reminder job failed", slog.String("date", day), slog.String("error", err.Error()))
		return
	}
	a.logger.Info("reminders sent", slog.String("date", day), slog.Int("count", sent))
}

// Run starts the HTTP server, the Kafka consumer and the reminder schedule,
// then blocks until the context is canceled.
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
			errCh <- fmt.Errorf("event consumer: %w", err)
		}
	}()

	a.scheduler.Start()

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

// Shutdown stops components in dependency order: HTTP, scheduler, tracer,
// consumer, producer, database.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		errs = append(errs, fmt.Errorf("http server: %w", err))
	}

	<-a.scheduler.Stop().Done()

	tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer tracerCancel()
	if err := a.tracerShutdown(tracerCtx); err != nil {
		errs = append(errs, fmt.Errorf("tracer: %w", err))
	}

	if err := a.consumer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("event consumer: %w", err))
	}
	if err := a.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("kafka producer: %w", err))
	}
	if a.pool != nil {
		a.pool.Close()
	}

	for _, err := range errs {
		a.logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
