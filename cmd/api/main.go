package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/superfishal-intelligence/backend/internal/app"
	"github.com/superfishal-intelligence/backend/internal/config"
	"github.com/superfishal-intelligence/backend/internal/platform/logger"
)

func main() {
	// Handle SIGINT/SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logg.Sync()

	application, err := app.NewApp(ctx, cfg, logg)
	if err != nil {
		logg.Error("startup failed", "error", err)
		logg.Sync()
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	logg.Info("Superfishal Intelligence API is running", "port", cfg.Port, "storage", cfg.StorageDriver)
	if err := application.Run(ctx); err != nil {
		logg.Error("server stopped with error", "error", err)
		return
	}
	logg.Info("shut down cleanly")
}
