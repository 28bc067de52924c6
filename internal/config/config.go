// Package config loads the scoring service configuration from the
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/hw-score/scoring-api/internal/store"
)

// Config holds every runtime setting of the scoring service.
type Config struct {
	// HTTP server
	Port             string
	RequestTimeout   time.Duration
	MaxRequestSize   int64
	GracefulShutdown time.Duration

	// Logging
	LogLevel string

	// Store backend: "redis" or "memory". The memory backend is for local
	// runs and tests only.
	StoreBackend string
	Redis        store.RedisConfig
}

// Default returns the configuration used when no environment overrides are
// set.
func Default() *Config {
	return &Config{
		Port:             "8080",
		RequestTimeout:   15 * time.Second,
		MaxRequestSize:   1 << 20, // 1 MB
		GracefulShutdown: 30 * time.Second,
		LogLevel:         "info",
		StoreBackend:     "redis",
		Redis:            store.DefaultRedisConfig(),
	}
}

// LoadFromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func LoadFromEnv() (*Config, error) {
	cfg := Default()

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.StoreBackend = getEnv("STORE_BACKEND", cfg.StoreBackend)

	var err error
	if cfg.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return nil, err
	}
	if cfg.GracefulShutdown, err = getEnvDuration("GRACEFUL_SHUTDOWN", cfg.GracefulShutdown); err != nil {
		return nil, err
	}
	if cfg.MaxRequestSize, err = getEnvInt64("MAX_REQUEST_SIZE", cfg.MaxRequestSize); err != nil {
		return nil, err
	}

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	if cfg.Redis.Database, err = getEnvInt("REDIS_DB", cfg.Redis.Database); err != nil {
		return nil, err
	}
	if cfg.Redis.PoolSize, err = getEnvInt("REDIS_POOL_SIZE", cfg.Redis.PoolSize); err != nil {
		return nil, err
	}
	if cfg.Redis.DialTimeout, err = getEnvDuration("REDIS_DIAL_TIMEOUT", cfg.Redis.DialTimeout); err != nil {
		return nil, err
	}
	if cfg.Redis.ReadTimeout, err = getEnvDuration("REDIS_READ_TIMEOUT", cfg.Redis.ReadTimeout); err != nil {
		return nil, err
	}
	if cfg.Redis.WriteTimeout, err = getEnvDuration("REDIS_WRITE_TIMEOUT", cfg.Redis.WriteTimeout); err != nil {
		return nil, err
	}
	if cfg.Redis.Retries, err = getEnvInt("REDIS_RETRIES", cfg.Redis.Retries); err != nil {
		return nil, err
	}
	if cfg.Redis.RetryBackoff, err = getEnvDuration("REDIS_RETRY_BACKOFF", cfg.Redis.RetryBackoff); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("config: port must not be empty")
	}
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("config: invalid port %q", c.Port)
	}
	switch c.StoreBackend {
	case "redis", "memory":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.StoreBackend)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	if c.MaxRequestSize <= 0 {
		return fmt.Errorf("config: max request size must be positive")
	}
	if c.StoreBackend == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis address must not be empty")
	}
	if c.Redis.Retries < 1 {
		return fmt.Errorf("config: redis retries must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return parsed, nil
}
