package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/trending-snapshots/internal/pkg/httputil"
)

// HealthStatus represents the health of the trigger server.
type HealthStatus struct {
	Status string                    `json:"status"` // "healthy" or "degraded"
	Uptime string                    `json:"uptime"`
	Checks map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck represents the health of a single dependency.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "not_configured"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthCheck reports process liveness and the run lock's redis.
// A down redis degrades the server but still answers 200: runs can be
// triggered, they will just fail with a lock error.
//
//	GET /healthz
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	checks := map[string]ComponentCheck{
		"redis": h.checkRedis(r.Context()),
	}

	status := "healthy"
	for _, c := range checks {
		if c.Status == "down" {
			status = "degraded"
		}
	}

	httputil.OK(w, HealthStatus{
		Status: status,
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
		Checks: checks,
	})
}

func (h *Handlers) checkRedis(ctx context.Context) ComponentCheck {
	if h.redisClient == nil {
		return ComponentCheck{Status: "not_configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	if err := h.redisClient.Ping(ctx).Err(); err != nil {
		return ComponentCheck{Status: "down", Message: err.Error()}
	}
	return ComponentCheck{Status: "up", Latency: time.Since(start).String()}
}
