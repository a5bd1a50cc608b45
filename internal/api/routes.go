package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ignite/trending-snapshots/internal/pkg/httputil"
)

// pipelinePattern limits {pipeline} to the runnable pipelines; anything
// else falls through to the JSON 404.
const pipelinePattern = "{pipeline:^(categories|trending)$}"

// NewRouter wires the trigger endpoints. metricsHandler may be nil.
func NewRouter(h *Handlers, metricsHandler http.Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if len(allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: allowedOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.NotFound(w, "route not found")
	})

	r.Get("/healthz", h.HealthCheck)
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/runs", func(r chi.Router) {
		r.Post("/"+pipelinePattern, h.TriggerRun)
		r.Get("/"+pipelinePattern, h.ListRuns)
	})

	return r
}
