package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig holds connection and retry settings for the Redis store.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	Database int    `json:"database"`
	PoolSize int    `json:"pool_size"`

	DialTimeout  time.Duration `json:"dial_timeout"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`

	// Retries is the number of attempts for authoritative reads. Each
	// failed attempt waits RetryBackoff before re-dialing.
	Retries      int           `json:"retries"`
	RetryBackoff time.Duration `json:"retry_backoff"`
}

// DefaultRedisConfig returns settings suitable for a local Redis.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Database:     0,
		PoolSize:     10,
		DialTimeout:  1 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
		Retries:      3,
		RetryBackoff: 100 * time.Millisecond,
	}
}

// RedisStore implements Store on top of a Redis server.
type RedisStore struct {
	client *redis.Client
	config RedisConfig
	logger *slog.Logger
}

// NewRedisStore creates a Redis-backed store. The connection is established
// lazily; use Ping to verify reachability at startup.
func NewRedisStore(config RedisConfig, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Retries <= 0 {
		config.Retries = 1
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.Database,
		PoolSize:     config.PoolSize,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		// go-redis retries transparently on connection errors; the
		// store's own retry loop covers command-level failures so that
		// backoff behavior stays under our control.
		MaxRetries: -1,
	})

	return &RedisStore{
		client: client,
		config: config,
		logger: logger.With(slog.String("component", "redis-store")),
	}
}

// CacheGet implements Store. Any backend failure is logged and reported as a
// cache miss.
func (s *RedisStore) CacheGet(ctx context.Context, key string) (string, bool) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
		return "", false
	}
	return value, true
}

// CacheSet implements Store. Write failures are logged and dropped.
func (s *RedisStore) CacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Warn("cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}
}

// Get implements Store. The read is retried per the configured policy before
// the last error is returned.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < s.config.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.config.RetryBackoff):
			}
		}

		value, err := s.client.Get(ctx, key).Result()
		if err == nil {
			return value, nil
		}
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}

		lastErr = err
		s.logger.Warn("store read failed, retrying",
			slog.String("key", key),
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", s.config.Retries),
			slog.String("error", err.Error()))
	}
	return "", fmt.Errorf("store get %q: %w", key, lastErr)
}

// Ping implements Store.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
