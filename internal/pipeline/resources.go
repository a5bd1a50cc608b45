package pipeline

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/trending-snapshots/internal/config"
	"github.com/ignite/trending-snapshots/internal/metrics"
	"github.com/ignite/trending-snapshots/internal/pkg/logger"
	"github.com/ignite/trending-snapshots/internal/storage"
)

// Resources are the process-wide collaborators shared by every run.
type Resources struct {
	Ledger  storage.Ledger
	Redis   *redis.Client // nil unless the run lock is enabled
	Metrics *metrics.Recorder

	lockTTL time.Duration
}

// OpenResources opens the ledger and the lock's redis client. A ledger that
// cannot be opened is logged and replaced by NopLedger: it must never stop
// a snapshot from being taken.
func OpenResources(ctx context.Context, cfg *config.Config) *Resources {
	res := &Resources{
		Ledger:  storage.NopLedger{},
		Metrics: metrics.NewRecorder(),
	}

	ledger, err := storage.NewLedger(ctx, cfg.Ledger, cfg.Storage)
	if err != nil {
		logger.Error("Run ledger unavailable, runs will not be recorded", "type", cfg.Ledger.Type, "error", err)
	} else {
		res.Ledger = ledger
	}

	if cfg.Lock.Enabled && cfg.Lock.RedisAddr != "" {
		res.Redis = redis.NewClient(&redis.Options{Addr: cfg.Lock.RedisAddr})
		res.lockTTL = cfg.Lock.TTL()
	}
	return res
}

// Options returns the runner options backed by these resources.
func (r *Resources) Options() []Option {
	opts := []Option{WithLedger(r.Ledger), WithMetrics(r.Metrics)}
	if r.Redis != nil {
		opts = append(opts, WithGuard(NewRedisGuard(r.Redis, r.lockTTL)))
	}
	return opts
}

// Close releases the ledger and the redis client.
func (r *Resources) Close() {
	if err := r.Ledger.Close(); err != nil {
		logger.Warn("Closing run ledger", "error", err)
	}
	if r.Redis != nil {
		r.Redis.Close()
	}
}
