package cache

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"campcircle/internal/api/config"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *CounterCache) {
	mr := miniredis.RunT(t)
	rdb := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	c := NewCounterCacheWithRand(rdb, config.CacheConfig{}, rand.New(rand.NewSource(1)))
	return mr, c
}

func TestGetOrCompute_MissComputesAndCaches(t *testing.T) {
	mr, c := setupCache(t)
	ctx := context.Background()

	v, err := c.GetOrCompute(ctx, "post:thumb:count:1", func(ctx context.Context) (int64, error) {
		return 7, nil
	})
	require.NoError(t, err)
	require.EqualValues(t, 7, v)

	raw, err := mr.Get("post:thumb:count:1")
	require.NoError(t, err)
	require.Equal(t, "7", raw)

	ttl := mr.TTL("post:thumb:count:1")
	require.GreaterOrEqual(t, ttl, 480*time.Second)
	require.Less(t, ttl, 600*time.Second)
}

func TestGetOrCompute_HitSkipsCompute(t *testing.T) {
	mr, c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("post:thumb:count:1", "42"))

	v, err := c.GetOrCompute(ctx, "post:thumb:count:1", func(ctx context.Context) (int64, error) {
		t.Fatal("compute should not run on a cache hit")
		return 0, nil
	})
	require.NoError(t, err)
	require.EqualValues(t, 42, v)
}

func TestGetOrCompute_MalformedValueDropped(t *testing.T) {
	mr, c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("post:thumb:count:1", "not-a-number"))

	v, err := c.GetOrCompute(ctx, "post:thumb:count:1", func(ctx context.Context) (int64, error) {
		return 5, nil
	})
	require.NoError(t, err)
	require.EqualValues(t, 5, v)

	// 坏条目被回源后的新值覆盖
	raw, err := mr.Get("post:thumb:count:1")
	require.NoError(t, err)
	require.Equal(t, "5", raw)
}

func TestGetOrCompute_RedisDownFallsBackToStore(t *testing.T) {
	mr, c := setupCache(t)
	ctx := context.Background()

	mr.Close()

	v, err := c.GetOrCompute(ctx, "post:thumb:count:1", func(ctx context.Context) (int64, error) {
		return 9, nil
	})
	require.NoError(t, err)
	require.EqualValues(t, 9, v)
}

func TestGetOrCompute_ComputeErrorPropagates(t *testing.T) {
	_, c := setupCache(t)
	ctx := context.Background()

	storeErr := errors.New("store unavailable")
	_, err := c.GetOrCompute(ctx, "post:thumb:count:1", func(ctx context.Context) (int64, error) {
		return 0, storeErr
	})
	require.ErrorIs(t, err, storeErr)
}

func TestInvalidate(t *testing.T) {
	mr, c := setupCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("k1", "1"))
	require.NoError(t, mr.Set("k2", "2"))

	c.Invalidate(ctx, "k1", "k2")

	require.False(t, mr.Exists("k1"))
	require.False(t, mr.Exists("k2"))
}

func TestAsyncInvalidate(t *testing.T) {
	mr, c := setupCache(t)

	require.NoError(t, mr.Set("k1", "1"))

	c.AsyncInvalidate("k1")

	require.Eventually(t, func() bool {
		return !mr.Exists("k1")
	}, time.Second, 10*time.Millisecond)
}

func TestAsyncRefresh(t *testing.T) {
	mr, c := setupCache(t)

	c.AsyncRefresh("post:thumb:count:1", func(ctx context.Context) (int64, error) {
		return 11, nil
	})

	require.Eventually(t, func() bool {
		raw, err := mr.Get("post:thumb:count:1")
		return err == nil && raw == "11"
	}, time.Second, 10*time.Millisecond)
}

func TestJitteredTTL_Bounds(t *testing.T) {
	_, c := setupCache(t)

	for i := 0; i < 200; i++ {
		ttl := c.JitteredTTL()
		require.GreaterOrEqual(t, ttl, 480*time.Second)
		require.Less(t, ttl, 600*time.Second)
	}
}

func TestJitteredTTL_FloorAboveDefaultCeil(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})

	// 只配下界且高于默认上界时，上界从下界推导，抖动区间保持非空
	c := NewCounterCacheWithRand(rdb, config.CacheConfig{TTLFloorSeconds: 700}, rand.New(rand.NewSource(1)))

	for i := 0; i < 200; i++ {
		ttl := c.JitteredTTL()
		require.GreaterOrEqual(t, ttl, 700*time.Second)
		require.Less(t, ttl, 820*time.Second)
	}
}
