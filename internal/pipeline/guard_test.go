package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/trending-snapshots/internal/pkg/distlock"
)

type fakeLock struct {
	acquired   bool
	acquireErr error
	releases   int
}

func (l *fakeLock) Acquire(context.Context) (bool, error) { return l.acquired, l.acquireErr }

func (l *fakeLock) Release(context.Context) error {
	l.releases++
	return errors.New("already expired")
}

func TestLockGuard(t *testing.T) {
	t.Run("acquired", func(t *testing.T) {
		lock := &fakeLock{acquired: true}
		var gotKey string
		guard := NewLockGuard(func(key string) distlock.DistLock {
			gotKey = key
			return lock
		})

		release, err := guard.Acquire(context.Background(), lockKey("trending", "2024-05-01"))
		require.NoError(t, err)
		assert.Equal(t, "ytetl:trending:2024-05-01", gotKey)

		// a failed release is only logged
		release()
		assert.Equal(t, 1, lock.releases)
	})

	t.Run("held", func(t *testing.T) {
		guard := NewLockGuard(func(string) distlock.DistLock { return &fakeLock{} })
		_, err := guard.Acquire(context.Background(), "k")
		assert.ErrorIs(t, err, ErrRunInProgress)
	})

	t.Run("redis down", func(t *testing.T) {
		down := errors.New("connection refused")
		guard := NewLockGuard(func(string) distlock.DistLock { return &fakeLock{acquireErr: down} })
		_, err := guard.Acquire(context.Background(), "k")
		assert.ErrorIs(t, err, down)
		assert.False(t, errors.Is(err, ErrRunInProgress))
	})
}
