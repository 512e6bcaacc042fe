package caching

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KeyPrefix namespaces every key this service writes.
const KeyPrefix = "kidspace:"

// CacheService stores opaque byte values with a TTL.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisCache is the shared L2 level.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(addr, password string, db int) *RedisCache {
	// Accept redis://host:port as well as host:port.
	addr = strings.TrimPrefix(strings.TrimPrefix(addr, "rediss://"), "redis://")
	return NewRedisCacheFromClient(redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}))
}

func NewRedisCacheFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, KeyPrefix+key, value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, KeyPrefix+key).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// MemoryCache is the in-process L1 level.
type MemoryCache struct {
	c *ristretto.Cache[string, []byte]
}

// NewMemoryCache bounds the cache to maxCostBytes of stored values.
func NewMemoryCache(maxCostBytes int64) (*MemoryCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: max(maxCostBytes/100*10, 1000),
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &MemoryCache{c: c}, nil
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	val, found := c.c.Get(key)
	return val, found, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.c.SetWithTTL(key, value, int64(len(value)), ttl)
	c.c.Wait()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.c.Del(key)
	return nil
}

func (c *MemoryCache) Ping(context.Context) error { return nil }

func (c *MemoryCache) Close() error {
	c.c.Close()
	return nil
}

// TieredCache reads L1 then L2, backfilling L1 on an L2 hit. An unavailable L2 degrades to a miss.
type TieredCache struct {
	l1     CacheService
	l2     CacheService
	l1TTL  time.Duration
	logger *zap.Logger
}

func NewTieredCache(l1, l2 CacheService, l1TTL time.Duration, logger *zap.Logger) *TieredCache {
	return &TieredCache{l1: l1, l2: l2, l1TTL: l1TTL, logger: logger}
}

func (c *TieredCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if val, found, _ := c.l1.Get(ctx, key); found {
		return val, true, nil
	}

	val, found, err := c.l2.Get(ctx, key)
	if err != nil {
		c.logger.Warn("L2 cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	if found {
		_ = c.l1.Set(ctx, key, val, c.l1TTL)
	}
	return val, found, nil
}

func (c *TieredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_ = c.l1.Set(ctx, key, value, min(ttl, c.l1TTL))
	if err := c.l2.Set(ctx, key, value, ttl); err != nil {
		c.logger.Warn("L2 cache write failed", zap.String("key", key), zap.Error(err))
	}
	return nil
}

func (c *TieredCache) Delete(ctx context.Context, key string) error {
	_ = c.l1.Delete(ctx, key)
	return c.l2.Delete(ctx, key)
}

// Ping reports the health of the shared level.
func (c *TieredCache) Ping(ctx context.Context) error {
	return c.l2.Ping(ctx)
}

func (c *TieredCache) Close() error {
	return errors.Join(c.l1.Close(), c.l2.Close())
}

// NewCacheService builds the ristretto + redis tiered cache.
func NewCacheService(redisAddr, redisPassword string, redisDB int, l1MaxCost int64, logger *zap.Logger) (CacheService, error) {
	l1, err := NewMemoryCache(l1MaxCost)
	if err != nil {
		return nil, err
	}
	l2 := NewRedisCache(redisAddr, redisPassword, redisDB)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l2.Ping(ctx); err != nil {
		logger.Warn("redis unreachable, lookups will use the in-process cache only", zap.String("addr", redisAddr), zap.Error(err))
	}
	return NewTieredCache(l1, l2, 10*time.Minute, logger), nil
}
