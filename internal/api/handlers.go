// Package api exposes the pipelines over HTTP for schedulers that can only
// fire webhooks.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/trending-snapshots/internal/pipeline"
	"github.com/ignite/trending-snapshots/internal/pkg/httputil"
	"github.com/ignite/trending-snapshots/internal/pkg/logger"
	"github.com/ignite/trending-snapshots/internal/storage"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// Runner executes one pipeline and returns its envelope.
type Runner interface {
	Run(ctx context.Context, pipeline string) pipeline.Result
}

// Handlers holds the trigger endpoints' dependencies.
type Handlers struct {
	runner      Runner
	ledger      storage.Ledger
	redisClient *redis.Client
	startTime   time.Time
}

// NewHandlers creates the handlers. ledger and redisClient may be nil.
func NewHandlers(runner Runner, ledger storage.Ledger, redisClient *redis.Client) *Handlers {
	if ledger == nil {
		ledger = storage.NopLedger{}
	}
	return &Handlers{
		runner:      runner,
		ledger:      ledger,
		redisClient: redisClient,
		startTime:   time.Now(),
	}
}

// TriggerRun runs the pipeline synchronously and maps its envelope onto
// the response.
//
//	POST /runs/{pipeline}
func (h *Handlers) TriggerRun(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "pipeline")

	// a dropped trigger connection must not abort an upload halfway
	ctx := context.WithoutCancel(r.Context())
	res := h.runner.Run(ctx, name)

	logger.Info("Triggered run finished",
		"pipeline", name,
		"run_id", res.Body.RunID,
		"status", res.StatusCode)
	httputil.RawJSON(w, res.StatusCode, res.BodyJSON())
}

// ListRuns returns the newest ledger records of a pipeline.
//
//	GET /runs/{pipeline}?limit=N
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "pipeline")

	limit := defaultRunsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			httputil.Error(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := h.ledger.Recent(r.Context(), name, limit)
	if err != nil {
		logger.Error("Failed to list runs", "pipeline", name, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []storage.RunRecord{}
	}
	httputil.OK(w, map[string]any{"pipeline": name, "runs": runs})
}
