// Package api wires the HTTP surface around the conversion pipeline.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xrasdas/sharelink/internal/api/handler"
	"github.com/xrasdas/sharelink/internal/api/middleware"
	"github.com/xrasdas/sharelink/internal/cache"
	"github.com/xrasdas/sharelink/internal/config"
)

// NewRouter assembles the chi router: request ID and real IP resolution,
// metrics, CORS, body and rate limits, structured logging, and the
// conversion endpoint.
func NewRouter(logger *slog.Logger, cfg *config.Config, store cache.Store) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = cache.New(cfg.Convert.CacheTTL)
	}

	r := chi.NewRouter()

	mCfg := middleware.DefaultMetricsConfig()
	if cfg.Metrics.Namespace != "" {
		mCfg.Namespace = cfg.Metrics.Namespace
	}
	if cfg.Metrics.Subsystem != "" {
		mCfg.Subsystem = cfg.Metrics.Subsystem
	}
	if len(cfg.Metrics.Buckets) > 0 {
		mCfg.Buckets = cfg.Metrics.Buckets
	}

	var metrics *middleware.Metrics
	if cfg.Metrics.Enabled {
		metrics = middleware.NewMetrics(mCfg)
	}

	r.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
	)

	if metrics != nil {
		r.Use(metrics.Middleware(mCfg))
	}

	maxBody := cfg.Convert.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 4 * 1024 * 1024
	}

	r.Use(
		middleware.CORS(middleware.DefaultCORSConfig()),
		middleware.BodyLimit(middleware.BodyLimitConfig{MaxBytes: maxBody}),
		middleware.RateLimit(middleware.DefaultRateLimitConfig()),
		middleware.StructuredLogger(middleware.LoggingConfig{
			Logger:        logger,
			SlowThreshold: 500 * time.Millisecond,
			SkipPaths:     []string{"/health", "/healthz", "/metrics"},
		}),
		chiMiddleware.Recoverer,
		chiMiddleware.Compress(5),
	)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Alias for Docker health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"ts":     time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Token != "" {
			r.With(middleware.MetricsGuard(cfg.Metrics.Token)).Handle("/metrics", promhttp.Handler())
		} else {
			r.Handle("/metrics", promhttp.Handler())
		}
	}

	convertHandler := handler.NewConvertHandler(store, logger)
	r.Route("/api", func(api chi.Router) {
		api.Post("/convert", convertHandler.Convert)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		logger.Warn("unmapped route hit", "method", req.Method, "path", req.URL.Path)
		http.NotFound(w, req)
	})

	return r
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
