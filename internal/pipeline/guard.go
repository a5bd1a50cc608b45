package pipeline

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/trending-snapshots/internal/pkg/distlock"
	"github.com/ignite/trending-snapshots/internal/pkg/logger"
)

// Guard prevents two runs of the same pipeline for the same date from
// overlapping. Acquire returns ErrRunInProgress when the key is held.
type Guard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// LockGuard takes one distlock.DistLock per run key.
type LockGuard struct {
	newLock func(key string) distlock.DistLock
}

// NewLockGuard returns a guard building its locks with newLock.
func NewLockGuard(newLock func(key string) distlock.DistLock) *LockGuard {
	return &LockGuard{newLock: newLock}
}

// NewRedisGuard returns a guard over distlock.RedisLock whose locks expire
// after ttl, so a crashed run cannot block the next day.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *LockGuard {
	return NewLockGuard(func(key string) distlock.DistLock {
		return distlock.NewRedisLock(client, key, ttl)
	})
}

func (g *LockGuard) Acquire(ctx context.Context, key string) (func(), error) {
	lock := g.newLock(key)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRunInProgress
	}
	return func() {
		if err := lock.Release(context.Background()); err != nil {
			logger.Warn("Failed to release run lock", "key", key, "error", err)
		}
	}, nil
}

func lockKey(pipeline, runDate string) string {
	return "ytetl:" + pipeline + ":" + runDate
}
