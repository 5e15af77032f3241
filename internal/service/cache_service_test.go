package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbarathsrinivasan/ACMHack/internal/repository"
)

func TestCacheServiceRoundTripAndMetrics(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	metrics := NewMetricsService()
	svc := NewCacheService(repository.NewCacheRepository(client, nil), metrics, 0, nil, true)
	ctx := context.Background()

	var out map[string]int
	hit, err := svc.Get(ctx, "planner:proposal:x", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "planner:proposal:x", map[string]int{"blocks": 3}, 0))
	assert.Equal(t, 10*time.Minute, mr.TTL("planner:proposal:x"))

	hit, err = svc.Get(ctx, "planner:proposal:x", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, out["blocks"])
	assert.InDelta(t, 0.5, testutil.ToFloat64(metrics.cacheHitRatio), 0.0001)

	require.NoError(t, svc.Delete(ctx, "planner:proposal:x"))
	assert.False(t, mr.Exists("planner:proposal:x"))
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	var svc *CacheService
	ctx := context.Background()

	hit, err := svc.Get(ctx, "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.Set(ctx, "k", 1, 0))
	assert.NoError(t, svc.Delete(ctx, "k"))

	disabled := NewCacheService(nil, nil, 0, nil, true)
	assert.False(t, disabled.Enabled())
}
