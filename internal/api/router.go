package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig carries the server settings the router needs.
type RouterConfig struct {
	AdminToken         string
	RateLimitPerMinute int
}

func NewRouter(svc Recommender, cfg RouterConfig, logger *slog.Logger) http.Handler {
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 120
	}
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.RateLimitPerMinute))

	rec := NewRecommendHandler(svc)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommend", rec.Recommend)
		r.Get("/materials", rec.Materials)
		r.Get("/categories", rec.Categories)
		r.Get("/history", rec.History)
		r.Get("/runs/{id}", rec.Run)
		r.Get("/analytics", rec.Analytics)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminToken))
			r.Post("/history/clear", rec.ClearHistory)
		})
	})

	return r
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewMetricsRouter serves /health and /metrics. Health reports 503 when db is
// set and unreachable.
func NewMetricsRouter(db Pinger) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
