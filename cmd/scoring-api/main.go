package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hw-score/scoring-api/internal/api"
	"github.com/hw-score/scoring-api/internal/auth"
	"github.com/hw-score/scoring-api/internal/config"
	"github.com/hw-score/scoring-api/internal/health"
	"github.com/hw-score/scoring-api/internal/metrics"
	"github.com/hw-score/scoring-api/internal/middleware"
	"github.com/hw-score/scoring-api/internal/scoring"
	"github.com/hw-score/scoring-api/internal/store"
)

const (
	serviceName    = "scoring-api"
	serviceVersion = "1.0.0"
)

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).
			Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting scoring service",
		slog.String("version", serviceVersion),
		slog.String("port", cfg.Port),
		slog.String("store_backend", cfg.StoreBackend))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewRecorder(registry)

	st := newStore(cfg, logger)
	defer st.Close()

	scorer := scoring.NewService(st, logger, recorder)
	authn := auth.New()
	handler := api.NewHandler(scorer, authn, logger, recorder)

	checker := health.NewChecker(serviceName, serviceVersion, logger)
	checker.RegisterCheck("store", st.Ping)

	server := newServer(cfg, logger, handler, checker, registry)

	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()
	checker.SetReady(true)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	checker.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdown)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", slog.String("error", err.Error()))
	}
	logger.Info("server exited")
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func newStore(cfg *config.Config, logger *slog.Logger) store.Store {
	if cfg.StoreBackend == "memory" {
		logger.Warn("using in-memory store, data will not survive restarts")
		return store.NewMemoryStore()
	}

	st := store.NewRedisStore(cfg.Redis, logger)

	// Startup is allowed with an unreachable Redis: the cache degrades
	// gracefully and readyz reports the interests store as down.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := st.Ping(ctx); err != nil {
		logger.Warn("redis unreachable at startup",
			slog.String("addr", cfg.Redis.Addr),
			slog.String("error", err.Error()))
	}
	return st
}

func newServer(cfg *config.Config, logger *slog.Logger, handler *api.Handler, checker *health.Checker, registry *prometheus.Registry) *http.Server {
	router := mux.NewRouter()

	router.Use(middleware.WithRequestID)
	router.Use(middleware.WithRecovery(logger))
	router.Use(middleware.WithLogging(logger))
	router.Use(middleware.WithRequestSizeLimit(cfg.MaxRequestSize))

	router.HandleFunc("/method", handler.HandleMethod).Methods(http.MethodPost)
	router.HandleFunc("/healthz", checker.HealthzHandler).Methods(http.MethodGet)
	router.HandleFunc("/readyz", checker.ReadyzHandler).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(handler.NotFound)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
		IdleTimeout:  2 * time.Minute,
	}
}
