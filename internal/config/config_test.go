package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "redis", cfg.StoreBackend)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 3, cfg.Redis.Retries)
	assert.Equal(t, 100*time.Millisecond, cfg.Redis.RetryBackoff)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORE_BACKEND", "memory")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_RETRIES", "5")
	t.Setenv("REDIS_RETRY_BACKOFF", "250ms")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("MAX_REQUEST_SIZE", "2048")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.StoreBackend)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.Database)
	assert.Equal(t, 5, cfg.Redis.Retries)
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.RetryBackoff)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(2048), cfg.MaxRequestSize)
}

func TestLoadFromEnvRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric port", key: "PORT", value: "http"},
		{name: "port out of range", key: "PORT", value: "70000"},
		{name: "unknown log level", key: "LOG_LEVEL", value: "trace"},
		{name: "unknown backend", key: "STORE_BACKEND", value: "postgres"},
		{name: "malformed duration", key: "REQUEST_TIMEOUT", value: "fast"},
		{name: "malformed int", key: "REDIS_DB", value: "two"},
		{name: "zero retries", key: "REDIS_RETRIES", value: "0"},
		{name: "negative request size", key: "MAX_REQUEST_SIZE", value: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadFromEnv()
			assert.Error(t, err)
		})
	}
}

func TestValidateEmptyRedisAddr(t *testing.T) {
	cfg := Default()
	cfg.Redis.Addr = ""
	assert.Error(t, cfg.Validate())

	// The memory backend does not need Redis.
	cfg.StoreBackend = "memory"
	assert.NoError(t, cfg.Validate())
}
