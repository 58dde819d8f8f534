// Package http assembles the chi router from the per-module handlers and the
// shared middleware chain.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"medchain/internal/platform/config"
	"medchain/internal/platform/metrics"
	"medchain/internal/platform/middleware"
	platformredis "medchain/internal/platform/redis"
	"medchain/internal/transport/http/shared"
	"medchain/internal/version"
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthChecker reports readiness of a backing resource. Nil checkers are
// skipped so the memory-store configuration stays healthy with no backends.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router needs. Handlers are registered behind
// authentication; health checkers feed /healthz.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.TokenValidator
	Redis     *platformredis.Client
	RateLimit config.RateLimit
	Handlers  []Registrar
	Checkers  []HealthChecker
}

// NewRouter builds the full HTTP surface. /healthz, /version and /metrics
// stay outside the auth and rate-limit chain.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", handleHealth(deps.Checkers))
	r.Get("/version", handleVersion)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ClientMetadata)
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		r.Use(middleware.RequestLimiter(deps.Redis, deps.RateLimit, deps.Logger))
		for _, h := range deps.Handlers {
			h.Register(r)
		}
	})

	return r
}

func handleVersion(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"version": version.Get()})
}

func handleHealth(checkers []HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checkers {
			if c == nil {
				continue
			}
			if err := c.Health(r.Context()); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"error":  err.Error(),
				})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
