package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/trending-snapshots/internal/config"
)

// Server wraps the trigger router in an http.Server.
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates the trigger server.
func NewServer(cfg config.ServerConfig, h *Handlers, metricsHandler http.Handler) *Server {
	return &Server{
		config:  cfg,
		handler: NewRouter(h, metricsHandler, cfg.AllowedOrigins),
	}
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.handler,
		// POST /runs answers only when the run is done; a trending run over
		// many countries takes minutes.
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      30 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
