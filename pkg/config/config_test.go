package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr())
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 7*24*time.Hour, cfg.JWT.Expiry())
	assert.Equal(t, "http://localhost:3000", cfg.App.BaseURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_EXPIRY_DAYS", "1")
	t.Setenv("APP_BASE_URL", "https://app.stayora.com/")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry())
	// Trailing slash is stripped so link building can always append a path.
	assert.Equal(t, "https://app.stayora.com", cfg.App.BaseURL)
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "stayora",
		Password: "secret",
		Name:     "stayora_auth",
		SSLMode:  "disable",
	}

	assert.Equal(t,
		"host=db port=5432 user=stayora password=secret dbname=stayora_auth sslmode=disable",
		d.DSN(),
	)
}
