package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/choiyeonggeon/DangDangSalon-sub000/pkg/logger"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/app"
	"github.com/choiyeonggeon/DangDangSalon-sub000/services/booking/internal/config"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New("booking-service", cfg.LogLevel)
	log.Info("starting booking service",
		slog.String("environment", cfg.Environment),
		slog.Int("http_port", cfg.HTTPPort),
		slog.String("store", cfg.StoreDriver),
		slog.Bool("cancelled_blocks_slot", cfg.CancelledBlocksSlot),
	)

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Error("failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := application.Run(ctx); err != nil {
		log.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("booking service stopped")
}
