// Command seed populates a development booking database with demo salons
// announces them on shop.created, and prints access tokens for a demo owner,
// customer and admin. It is idempotent: shops that already exist are left
// alone.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/auth"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/database"
	apperrors "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/errors"
	pkgkafka "github.com/choiyeonggeon/DangDangSalon-sub000/pkg/kafka"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/logger"
	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/middleware"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/config"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/domain"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/event"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/repository/postgres"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/migrations"
)

const (
	demoOwnerID    = "owner-demo"
	demoCustomerID = "customer-demo"
	demoAdminID    = "admin-demo"
)

var demoShops = []domain.Shop{
	{
		ID:        "0b6f3a52-6d0e-4c43-9a8e-3f1d2c5b7a01",
		OwnerID:   demoOwnerID,
		Name:      "Happy Paws Grooming",
		TimeSlots: []string{"10:00", "11:00", "13:00", "14:00", "15:00", "16:00"},
	},
	{
		ID:        "0b6f3a52-6d0e-4c43-9a8e-3f1d2c5b7a02",
		OwnerID:   demoOwnerID,
		Name:      "Fluffy Tail Salon",
		TimeSlots: []string{"09:30", "11:30", "14:30", "17:30"},
	},
	{
		// No slots configured: the booking service falls back to the default grid.
		ID:      "0b6f3a52-6d0e-4c43-9a8e-3f1d2c5b7a03",
		OwnerID: demoOwnerID,
		Name:    "Corner Dog Spa",
	},
}

func main() {
	if err := run(); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	log := logger.New("booking-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	shops := postgres.NewShopRepository(pool)
	now := time.Now().UTC()
	for i := range demoShops {
		shop := demoShops[i]
		_, err := shops.GetByID(ctx, shop.ID)
		if err == nil {
			log.Info("shop already present", slog.String("shop_id", shop.ID), slog.String("name", shop.Name))
			continue
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("look up shop %s: %w", shop.ID, err)
		}

		shop.CreatedAt, shop.UpdatedAt = now, now
		if err := shops.Create(ctx, &shop); err != nil {
			return fmt.Errorf("create shop %s: %w", shop.Name, err)
		}
		log.Info("shop created", slog.String("shop_id", shop.ID), slog.String("name", shop.Name))
	}

	// Shop ownership reaches the review service through shop.created, so
	// every demo shop is announced, including ones that already existed.
	kafkaProducer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), log)
	defer kafkaProducer.Close()
	producer := event.NewProducer(kafkaProducer, log)
	for i := range demoShops {
		if err := producer.PublishShopCreated(ctx, &demoShops[i]); err != nil {
			log.Warn("shop not announced", slog.String("shop_id", demoShops[i].ID), slog.String("error", err.Error()))
		}
	}

	tokens := auth.NewJWTManager(cfg.JWT)
	for _, u := range []struct{ id, name, role string }{
		{demoOwnerID, "Demo Owner", middleware.RoleOwner},
		{demoCustomerID, "Demo Customer", middleware.RoleCustomer},
		{demoAdminID, "Demo Admin", middleware.RoleAdmin},
	} {
		token, err := tokens.GenerateToken(u.id, u.name, u.role)
		if err != nil {
			return fmt.Errorf("issue %s token: %w", u.role, err)
		}
		fmt.Printf("%-8s %s\n", u.role, token)
	}
	return nil
}
