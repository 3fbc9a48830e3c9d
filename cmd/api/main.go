package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"railway/internal/app"
	"railway/internal/config"
	"railway/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("startup failed", zap.Error(err))
	}
	defer func() {
		if err := a.Close(); err != nil {
			zl.Error("close", zap.Error(err))
		}
	}()

	zl.Info("starting railway api",
		zap.String("env", cfg.AppEnv),
		zap.String("storage", cfg.StorageDriver),
	)
	if err := a.Run(ctx); err != nil {
		zl.Error("server stopped", zap.Error(err))
		return
	}
	zl.Info("server stopped")
}
