// Package store provides the key-value backend for the scoring service.
//
// Two access patterns are exposed with deliberately different failure
// semantics: the cache operations (CacheGet/CacheSet) are best-effort and
// never return an error to the caller, while Get is authoritative and
// propagates failures after the configured retries are exhausted.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist. Callers must
// distinguish a missing key from a backend failure.
var ErrNotFound = errors.New("store: key not found")

// Store is the storage contract used by the scoring core.
type Store interface {
	// CacheGet returns the cached value for key. The second return value
	// reports whether a value was found; backend errors are treated as a
	// miss.
	CacheGet(ctx context.Context, key string) (string, bool)

	// CacheSet stores value under key with the given TTL. Failures are
	// swallowed: a broken cache degrades latency, never correctness.
	CacheSet(ctx context.Context, key, value string, ttl time.Duration)

	// Get returns the value for key from authoritative storage. A missing
	// key yields ErrNotFound; any other error means the backend could not
	// be reached.
	Get(ctx context.Context, key string) (string, error)

	// Ping verifies the backend is reachable. Used by readiness checks.
	Ping(ctx context.Context) error

	// Close releases backend connections.
	Close() error
}
