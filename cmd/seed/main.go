package main

import (
	"context"
	"flag"
	"log"

	"go.uber.org/zap"

	"railway/internal/config"
	"railway/internal/pkg/logger"
	"railway/internal/repository"
	"railway/internal/seed"
	"railway/internal/storage"
)

func main() {
	keep := flag.Bool("keep", false, "keep existing users, trains and bookings")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx := context.Background()

	backend, err := storage.Open(cfg.StorageDriver, cfg.DatabaseURL, cfg.BoltPath, zl)
	if err != nil {
		zl.Fatal("open storage", zap.Error(err))
	}
	defer func() { _ = backend.Close() }()

	if !*keep {
		zl.Info("cleaning old data")
		if err := seed.Reset(ctx, backend); err != nil {
			zl.Fatal("reset", zap.Error(err))
		}
	}

	users := repository.NewUserRepository(backend)
	trains := repository.NewTrainRepository(backend)
	if err := seed.EnsureSeeded(ctx, users, trains, cfg.AdminPassword, zl); err != nil {
		zl.Fatal("seed", zap.Error(err))
	}

	zl.Info("seed complete", zap.String("admin", seed.AdminUsername))
}
