package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, CartBackendMemory, cfg.Cart.Backend)
	assert.Equal(t, 7*24*time.Hour, cfg.Cart.SessionTTL)
	assert.Equal(t, "UTC", cfg.Store.Location.String())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_TIMEZONE", "Asia/Kolkata")
	t.Setenv("CART_BACKEND", "redis")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "7")
	t.Setenv("CART_SESSION_TTL", "1h")
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CartBackendRedis, cfg.Cart.Backend)
	assert.Equal(t, 7, cfg.Database.MaxOpenConns)
	assert.Equal(t, time.Hour, cfg.Cart.SessionTTL)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "Asia/Kolkata", cfg.Store.Location.String())
}

func TestLoadRejectsUnknownCartBackend(t *testing.T) {
	t.Setenv("CART_BACKEND", "cookie")

	_, err := Load()
	assert.Error(t, err)
}
