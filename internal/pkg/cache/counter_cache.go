package cache

import (
	"context"
	"errors"
	log "log/slog"
	"math/rand"
	"strconv"
	"sync"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"campcircle/internal/api/config"
)

// ComputeFunc 回源查询，返回权威计数
type ComputeFunc func(ctx context.Context) (int64, error)

// CounterCache 计数的旁路缓存。缓存永远只是权威存储的镜像：
// 读不到、读坏了、Redis 不可用，一律按未命中处理并回源，绝不把缓存缺失
// 当成计数为零。写入时的过期时间在 [floor, ceil) 内随机取值，打散同一批
// key 的到期时刻。
type CounterCache struct {
	rdb *redisv9.Client
	cfg config.CacheConfig

	mu  sync.Mutex
	rng *rand.Rand
}

// NewCounterCache 创建计数缓存，随机源默认按当前时间播种
func NewCounterCache(rdb *redisv9.Client, cfg config.CacheConfig) *CounterCache {
	return NewCounterCacheWithRand(rdb, cfg, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewCounterCacheWithRand 指定随机源，便于测试时得到确定的过期时间
func NewCounterCacheWithRand(rdb *redisv9.Client, cfg config.CacheConfig, rng *rand.Rand) *CounterCache {
	return &CounterCache{
		rdb: rdb,
		cfg: cfg.WithDefaults(),
		rng: rng,
	}
}

// GetOrCompute 命中即返回缓存值；值损坏则删掉坏条目后按未命中处理；
// 未命中时回源并以抖动 TTL 写回。缓存读写失败只记日志，不影响调用方。
func (c *CounterCache) GetOrCompute(ctx context.Context, key string, compute ComputeFunc) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout())
	raw, err := c.rdb.Get(opCtx, key).Result()
	cancel()

	if err == nil {
		v, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr == nil {
			return v, nil
		}
		log.WarnContext(ctx, "bad counter cache value, dropping entry", "key", key, "value", raw)
		c.Invalidate(ctx, key)
	} else if !errors.Is(err, redisv9.Nil) {
		log.WarnContext(ctx, "counter cache read failed, falling back to store", "key", key, "err", err)
	}

	v, err := compute(ctx)
	if err != nil {
		return 0, err
	}

	c.Set(ctx, key, v, c.JitteredTTL())
	return v, nil
}

// Set 写入缓存，失败只记日志
func (c *CounterCache) Set(ctx context.Context, key string, value int64, ttl time.Duration) {
	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout())
	defer cancel()

	if err := c.rdb.Set(opCtx, key, strconv.FormatInt(value, 10), ttl).Err(); err != nil {
		log.WarnContext(ctx, "counter cache write failed", "key", key, "err", err)
	}
}

// Invalidate 删除一个或多个缓存条目，失败只记日志
func (c *CounterCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout())
	defer cancel()

	if err := c.rdb.Del(opCtx, keys...).Err(); err != nil {
		log.WarnContext(ctx, "counter cache invalidate failed", "keys", keys, "err", err)
	}
}

// AsyncInvalidate 在后台删除缓存条目，不阻塞请求路径。
// 使用 Background context 防止随请求一起被 cancel。
func (c *CounterCache) AsyncInvalidate(keys ...string) {
	go func() {
		c.Invalidate(context.Background(), keys...)
	}()
}

// AsyncRefresh 在后台回源并刷新缓存条目
func (c *CounterCache) AsyncRefresh(key string, compute ComputeFunc) {
	go func() {
		ctx := context.Background()
		v, err := compute(ctx)
		if err != nil {
			log.Warn("counter cache async refresh failed", "key", key, "err", err)
			return
		}
		c.Set(ctx, key, v, c.JitteredTTL())
	}()
}

// JitteredTTL 在 [floor, ceil) 内均匀取一个过期时间
func (c *CounterCache) JitteredTTL() time.Duration {
	floor := c.cfg.TTLFloor()
	span := c.cfg.TTLCeil() - floor

	c.mu.Lock()
	jitter := time.Duration(c.rng.Int63n(int64(span)))
	c.mu.Unlock()

	return floor + jitter
}
