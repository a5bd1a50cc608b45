package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestAcquireIsExclusive(t *testing.T) {
	_, client := setupRedis(t)
	ctx := context.Background()

	first := NewRedisLock(client, "ytetl:trending:2024-05-01", time.Minute)
	second := NewRedisLock(client, "ytetl:trending:2024-05-01", time.Minute)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Release(ctx))

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReleaseKeepsForeignLock(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	owner := NewRedisLock(client, "ytetl:categories:2024-05-01", time.Minute)
	other := NewRedisLock(client, "ytetl:categories:2024-05-01", time.Minute)

	ok, err := owner.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, other.Release(ctx))
	assert.True(t, mr.Exists(owner.Key()))
}

func TestLockExpires(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()

	lock := NewRedisLock(client, "ytetl:trending:2024-05-02", time.Second)
	ok, err := lock.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = NewRedisLock(client, "ytetl:trending:2024-05-02", time.Second).Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}
