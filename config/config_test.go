package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "http://localhost:5000/api", cfg.API.BaseURL)
	assert.Equal(t, StoreBackendMemory, cfg.Store.Backend)
	assert.Equal(t, 2, cfg.Guest.InventoryLimit)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SHOPFLOW_API_URL", "https://api.shopflow.example/api")
	t.Setenv("SESSION_STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDRESS", "redis.internal:6380")
	t.Setenv("GUEST_INVENTORY_LIMIT", "5")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.shopflow.example/api", cfg.API.BaseURL)
	assert.Equal(t, StoreBackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Address)
	assert.Equal(t, 5, cfg.Guest.InventoryLimit)
}

func TestValidateRejectsBadBaseURL(t *testing.T) {
	t.Setenv("SHOPFLOW_API_URL", "not-a-url")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API base URL")
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SESSION_STORE_BACKEND", "sqlite")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session store backend")
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "staging")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment")
}

func TestValidateRejectsZeroGuestLimit(t *testing.T) {
	t.Setenv("GUEST_INVENTORY_LIMIT", "0")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guest inventory limit")
}
