package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/auth"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/database"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/health"
	pkgkafka "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/kafka"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/middleware"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/tracing"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/config"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/event"
	handler "github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/handler/http"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/repository"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/repository/memory"
	reviewmongo "github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/repository/mongo"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/review/internal/service"
)

// App wires together all dependencies and runs the review service.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	mongoClient    *mongo.Client
	producer       *pkgkafka.Producer
	consumer       *pkgkafka.Consumer
	directory      *pkgkafka.Consumer
	httpServer     *http.Server
	tracerShutdown func(context.Context) error
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.Init(ctx, "review", cfg.Environment, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	a := &App{cfg: cfg, logger: logger, tracerShutdown: tracerShutdown}
	healthHandler := health.NewHandler()

	var (
		reviews   repository.ReviewRepository
		source    repository.RatingSource
		ratings   repository.RatingRepository
		directory repository.DirectoryRepository
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		logger.Warn("using in-memory store; reviews are lost on restart")
		store := memory.NewStore()
		reviews, source, ratings, directory = store, store, store, store
	default:
		client, err := database.NewMongoClient(ctx, cfg.Mongo, logger)
		if err != nil {
			return nil, fmt.Errorf("connect to mongodb: %w", err)
		}
		a.mongoClient = client

		db := client.Database(cfg.Mongo.Database)
		reviewRepo := reviewmongo.NewReviewRepository(db)
		if err := reviewRepo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		reviews, source = reviewRepo, reviewRepo
		ratings = reviewmongo.NewRatingRepository(db)
		directory = reviewmongo.NewDirectoryRepository(db)

		healthHandler.RegisterCritical("mongodb", func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		})
	}

	a.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	if err := a.producer.Ping(ctx); err != nil {
		logger.Warn("kafka unreachable, continuing in degraded mode", slog.String("error", err.Error()))
	}
	healthHandler.RegisterNonCritical("kafka", a.producer.Ping)

	producer := event.NewProducer(a.producer, logger)
	reviewService := service.NewReviewService(reviews, ratings, directory, producer, logger)
	aggregator := service.NewAggregator(source, ratings, producer, logger)

	// One attempt per review.changed: a failed recomputation is logged and
	// the next change to the shop's reviews repairs the aggregate.
	eventConsumer := event.NewConsumer(aggregator, logger)
	a.consumer = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers:     cfg.KafkaBrokers,
		GroupID:     cfg.AggregatorGroup,
		Topics:      []string{event.TopicReviewChanged},
		MaxAttempts: 1,
	}, pkgkafka.IdempotentHandler(pkgkafka.NewMemoryIdempotencyStore(24*time.Hour), eventConsumer.Handle, logger), logger)

	// Shop owners and reservations from the booking service. Writes are
	// upserts, so redelivery is harmless and failures are retried.
	directoryConsumer := event.NewDirectoryConsumer(reviewService, logger)
	a.directory = pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
		Brokers: cfg.KafkaBrokers,
		GroupID: cfg.DirectoryGroup,
		Topics:  []string{event.TopicShopCreated, event.TopicReservationCreated},
	}, directoryConsumer.Handle, logger)

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSAllowedOrigins
	router := handler.NewRouter(reviewService, healthHandler, auth.NewJWTManager(cfg.JWT), cors, logger)

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

// Run starts the HTTP server and both consumers, then blocks until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 3)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	go func() {
		if err := a.consumer.Start(ctx); err != nil {
			errCh <- fmt.Errorf("rating aggregator consumer: %w", err)
		}
	}()

	go func() {
		if err := a.directory.Start(ctx); err != nil {
			errCh <- fmt.Errorf("directory consumer: %w", err)
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

// Shutdown stops components in dependency order: HTTP, tracer, consumers,
// producer, MongoDB.
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
		errs = append(errs, fmt.Errorf("rating aggregator consumer: %w", err))
	}
	if err := a.directory.Close(); err != nil {
		errs = append(errs, fmt.Errorf("directory consumer: %w", err))
	}
	if err := a.producer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("kafka producer: %w", err))
	}
	if a.mongoClient != nil {
		mongoCtx, mongoCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer mongoCancel()
		if err := a.mongoClient.Disconnect(mongoCtx); err != nil {
			errs = append(errs, fmt.Errorf("mongodb: %w", err))
		}
	}

	for _, err := range errs {
		a.logger.Error("shutdown error", slog.String("error", err.Error()))
	}
	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
