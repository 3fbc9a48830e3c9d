package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, "bolt", cfg.StorageDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "abc123", cfg.AdminPassword)
	assert.True(t, cfg.SeedOnStart)
	assert.Empty(t, cfg.CORSAllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "SQL")
	t.Setenv("DATABASE_URL", "postgres://rail@localhost/rail")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://rail.example, ,https://admin.rail.example")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "30")
	t.Setenv("SEED_ON_START", "off")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sql", cfg.StorageDriver)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://rail.example", "https://admin.rail.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, 30, cfg.LoginRatePerMinute)
	assert.False(t, cfg.SeedOnStart)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"bad driver":       {"STORAGE_DRIVER": "csv"},
		"bad ttl":          {"JWT_TTL": "soon"},
		"zero rate":        {"LOGIN_RATE_PER_MINUTE": "0"},
		"short admin pass": {"ADMIN_PASSWORD": "abc"},
		"prod default jwt": {"APP_ENV": "production"},
		"prod default admin": {
			"APP_ENV":    "production",
			"JWT_SECRET": "s3cr3t-value",
		},
	}

	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
