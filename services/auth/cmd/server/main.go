package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wekeepgrowing/semo-starter/services/auth/internal/app"
	"github.com/wekeepgrowing/semo-starter/services/auth/internal/config"
	"go.uber.org/zap"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 2. Logger
	logger := cfg.Logger
	defer logger.Sync()

	logger.Info("Starting auth service",
		zap.String("service", cfg.Service.Name),
		zap.String("version", cfg.Service.Version),
	)

	// 3. Infrastructure, repositories, use cases and servers
	application, err := app.New(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize service", zap.Error(err))
	}
	defer application.Close()

	// 4. Serve until SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("Service stopped with error", zap.Error(err))
		return
	}

	logger.Info("Service stopped")
}
