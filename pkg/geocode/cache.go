package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/quocanhngo/agrosynth/internal/observability"
	"github.com/redis/go-redis/v9"
)

// Cache stores reverse geocoding results by key
type Cache interface {
	Get(ctx context.Context, key string) (Result, bool)
	Set(ctx context.Context, key string, result Result)
}

// Cached wraps a Reverser with a result cache.
// Only non-empty results are cached so a transient miss can be retried later.
type Cached struct {
	inner   Reverser
	cache   Cache
	metrics *observability.Metrics
}

// NewCached creates a cache decorator around a Reverser
func NewCached(inner Reverser, cache Cache, metrics *observability.Metrics) *Cached {
	return &Cached{inner: inner, cache: cache, metrics: metrics}
}

func (c *Cached) Reverse(ctx context.Context, lat, lon float64) (Result, error) {
	key := cacheKey(lat, lon)
	if result, ok := c.cache.Get(ctx, key); ok {
		c.metrics.GeocodeCacheLookup(true)
		return result, nil
	}
	c.metrics.GeocodeCacheLookup(false)

	result, err := c.inner.Reverse(ctx, lat, lon)
	if err != nil {
		return result, err
	}
	if result.DisplayName != "" {
		c.cache.Set(ctx, key, result)
	}
	return result, nil
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("rev:%.6f,%.6f", lat, lon)
}

// MemoryCache is an in-process cache with expiry, used by the CLI
type MemoryCache struct {
	c *gocache.Cache
}

// NewMemoryCache creates a MemoryCache whose entries live for ttl
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{c: gocache.New(ttl, 2*ttl)}
}

func (m *MemoryCache) Get(_ context.Context, key string) (Result, bool) {
	v, ok := m.c.Get(key)
	if !ok {
		return Result{}, false
	}
	return v.(Result), true
}

func (m *MemoryCache) Set(_ context.Context, key string, result Result) {
	m.c.SetDefault(key, result)
}

// RedisCache shares results between API instances
type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisCache creates a RedisCache storing keys under "geocode:"
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, prefix: "geocode:"}
}

func (r *RedisCache) Get(ctx context.Context, key string) (Result, bool) {
	data, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("⚠️  Geocode cache read failed: %v", err)
		}
		return Result{}, false
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, false
	}
	return result, true
}

func (r *RedisCache) Set(ctx context.Context, key string, result Result) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, r.prefix+key, data, r.ttl).Err(); err != nil {
		log.Printf("⚠️  Geocode cache write failed: %v", err)
	}
}
