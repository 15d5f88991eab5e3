package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	gocache "github.com/patrickmn/go-cache"
)

// LocalCodeCache keeps code -> identity resolutions in process memory.
type LocalCodeCache struct {
	cache *gocache.Cache
}

func NewLocalCodeCache(ttl time.Duration) *LocalCodeCache {
	return &LocalCodeCache{
		cache: gocache.New(ttl, ttl+5*time.Minute),
	}
}

func (c *LocalCodeCache) Get(ctx context.Context, code string) (int64, bool) {
	cached, found := c.cache.Get(code)
	if !found {
		return 0, false
	}
	return cached.(int64), true
}

func (c *LocalCodeCache) Set(ctx context.Context, code string, id int64) {
	c.cache.Set(code, id, gocache.DefaultExpiration)
}

// MemcacheCodeCache shares resolutions between replicas. Failures degrade to misses.
type MemcacheCodeCache struct {
	client *memcache.Client
	ttl    int32
}

// memcached reads expirations above 30 days as absolute unix times.
const maxMemcacheTTL = 30 * 24 * time.Hour

func NewMemcacheCodeCache(client *memcache.Client, ttl time.Duration) *MemcacheCodeCache {
	return &MemcacheCodeCache{
		client: client,
		ttl:    memcacheExpiration(ttl),
	}
}

func memcacheExpiration(ttl time.Duration) int32 {
	if ttl <= 0 {
		return 0
	}
	if ttl > maxMemcacheTTL {
		ttl = maxMemcacheTTL
	}
	seconds := int32(ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

func codeKey(code string) string {
	return "anonrelay:code:" + code
}

func (c *MemcacheCodeCache) Get(ctx context.Context, code string) (int64, bool) {
	item, err := c.client.Get(codeKey(code))
	if err != nil {
		if err != memcache.ErrCacheMiss {
			slog.WarnContext(ctx, "memcache get failed",
				slog.String("error", err.Error()),
				slog.String("module", "cache"),
			)
		}
		return 0, false
	}
	id, err := strconv.ParseInt(string(item.Value), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (c *MemcacheCodeCache) Set(ctx context.Context, code string, id int64) {
	err := c.client.Set(&memcache.Item{
		Key:        codeKey(code),
		Value:      []byte(strconv.FormatInt(id, 10)),
		Expiration: c.ttl,
	})
	if err != nil {
		slog.WarnContext(ctx, "memcache set failed",
			slog.String("error", err.Error()),
			slog.String("module", "cache"),
		)
	}
}
