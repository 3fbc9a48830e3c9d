package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultStorageDriver   = "bolt"
	defaultBoltPath        = "railway.bolt"
	defaultDatabaseURL     = "railway.db"
	defaultJWTSecret       = "change-me-jwt-secret"
	defaultJWTTTL          = "24h"
	defaultAdminPassword   = "abc123"
	defaultLoginRate       = "10"
	defaultLoginBurst      = "5"
	defaultSeedOnStart     = "true"
	defaultShutdownTimeout = "10s"
)

type Config struct {
	AppEnv   string
	HTTPAddr string
	LogLevel string

	StorageDriver string
	DatabaseURL   string
	BoltPath      string

	JWTSecret string
	JWTTTL    time.Duration
	// RedisURL enables the shared token revocation list; empty keeps it in memory.
	RedisURL string

	CORSAllowedOrigins []string
	LoginRatePerMinute int
	LoginRateBurst     int

	SeedOnStart     bool
	AdminPassword   string
	ShutdownTimeout time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{}
	appEnv := strings.TrimSpace(getEnv("APP_ENV", getEnv("ENV", "dev")))
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.LogLevel = strings.TrimSpace(getEnv("LOG_LEVEL", ""))
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(getEnv("STORAGE_DRIVER", defaultStorageDriver)))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.BoltPath = strings.TrimSpace(getEnv("BOLT_PATH", defaultBoltPath))
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", defaultAdminPassword)
	cfg.SeedOnStart = parseBoolEnv("SEED_ON_START", defaultSeedOnStart)
	cfg.CORSAllowedOrigins = parseListEnv("CORS_ALLOWED_ORIGINS")

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}

	cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	if err != nil {
		return nil, err
	}

	cfg.LoginRatePerMinute, err = parseIntEnv("LOGIN_RATE_PER_MINUTE", defaultLoginRate)
	if err != nil {
		return nil, err
	}

	cfg.LoginRateBurst, err = parseIntEnv("LOGIN_RATE_BURST", defaultLoginBurst)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) IsProdLike() bool { return isProdLike(c.AppEnv) }

func validateConfig(cfg *Config) error {
	if cfg.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR must not be empty")
	}
	switch cfg.StorageDriver {
	case "bolt":
		if cfg.BoltPath == "" {
			return fmt.Errorf("BOLT_PATH must not be empty when STORAGE_DRIVER=bolt")
		}
	case "sql":
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must not be empty when STORAGE_DRIVER=sql")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: bolt, sql")
	}
	if cfg.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	if cfg.LoginRatePerMinute <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MINUTE must be > 0")
	}
	if cfg.LoginRateBurst <= 0 {
		return fmt.Errorf("LOGIN_RATE_BURST must be > 0")
	}
	if len(cfg.AdminPassword) < 6 {
		return fmt.Errorf("ADMIN_PASSWORD must be at least 6 characters")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if cfg.SeedOnStart && cfg.AdminPassword == defaultAdminPassword {
			return fmt.Errorf("in prod/release ADMIN_PASSWORD must not be default when SEED_ON_START is on")
		}
	}

	return nil
}
