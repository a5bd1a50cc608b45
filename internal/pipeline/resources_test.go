package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/trending-snapshots/internal/config"
	"github.com/ignite/trending-snapshots/internal/storage"
)

func TestOpenResourcesFallsBackToNopLedger(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Ledger.Type = "cassandra"

	res := OpenResources(context.Background(), cfg)
	defer res.Close()

	assert.IsType(t, storage.NopLedger{}, res.Ledger)
	assert.Nil(t, res.Redis)
	assert.Len(t, res.Options(), 2)
}

func TestOpenResourcesLockUsesConfiguredTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Lock.Enabled = true
	cfg.Lock.RedisAddr = mr.Addr()
	cfg.Lock.TTLSeconds = 120

	res := OpenResources(context.Background(), cfg)
	defer res.Close()
	require.NotNil(t, res.Redis)
	require.Len(t, res.Options(), 3)

	release, err := NewRedisGuard(res.Redis, res.lockTTL).Acquire(context.Background(), "ytetl:trending:2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, 120*time.Second, mr.TTL("lock:ytetl:trending:2024-05-01"))
	release()
	assert.False(t, mr.Exists("lock:ytetl:trending:2024-05-01"))
}
