// Package health implements the liveness and readiness endpoints.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one dependency. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// Checker tracks service readiness and dependency health.
type Checker struct {
	serviceName string
	version     string
	startTime   time.Time
	logger      *slog.Logger
	timeout     time.Duration

	mu     sync.RWMutex
	ready  bool
	checks map[string]CheckFunc
}

// NewChecker creates a Checker. The service starts not ready; call
// SetReady(true) once dependencies are initialized.
func NewChecker(serviceName, version string, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		serviceName: serviceName,
		version:     version,
		startTime:   time.Now(),
		logger:      logger.With(slog.String("component", "health")),
		timeout:     5 * time.Second,
		checks:      make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named dependency probe evaluated by readyz.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// SetReady flips the readiness gate.
func (c *Checker) SetReady(ready bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = ready
}

// HealthzHandler reports liveness: the process is up and serving.
func (c *Checker) HealthzHandler(w http.ResponseWriter, r *http.Request) {
	c.writeStatus(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": c.serviceName,
		"version": c.version,
		"uptime":  time.Since(c.startTime).String(),
	})
}

// ReadyzHandler reports readiness: the gate is open and every registered
// dependency probe passes.
func (c *Checker) ReadyzHandler(w http.ResponseWriter, r *http.Request) {
	c.mu.RLock()
	ready := c.ready
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	if !ready {
		c.writeStatus(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not ready",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), c.timeout)
	defer cancel()

	results := make(map[string]string, len(checks))
	status := http.StatusOK
	for name, check := range checks {
		if err := check(ctx); err != nil {
			c.logger.Warn("readiness check failed",
				slog.String("check", name),
				slog.String("error", err.Error()))
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			results[name] = "ok"
		}
	}

	body := map[string]any{
		"status": "ready",
		"checks": results,
	}
	if status != http.StatusOK {
		body["status"] = "not ready"
	}
	c.writeStatus(w, status, body)
}

func (c *Checker) writeStatus(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
