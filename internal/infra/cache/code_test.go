package cache

import (
	"context"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
)

func TestLocalCodeCache(t *testing.T) {
	c := NewLocalCodeCache(time.Minute)
	ctx := context.Background()

	_, ok := c.Get(ctx, "abc")
	assert.False(t, ok)

	c.Set(ctx, "abc", 42)
	id, ok := c.Get(ctx, "abc")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestMemcacheCodeCacheUnreachableIsMiss(t *testing.T) {
	client := memcache.New("127.0.0.1:1")
	client.Timeout = 50 * time.Millisecond
	c := NewMemcacheCodeCache(client, time.Minute)
	ctx := context.Background()

	c.Set(ctx, "abc", 42)
	_, ok := c.Get(ctx, "abc")
	assert.False(t, ok)
}

func TestMemcacheExpiration(t *testing.T) {
	tests := []struct {
		name string
		ttl  time.Duration
		want int32
	}{
		{"no expiry", 0, 0},
		{"negative", -time.Second, 0},
		{"sub second", 200 * time.Millisecond, 1},
		{"minutes", 10 * time.Minute, 600},
		{"thirty days", 720 * time.Hour, 2592000},
		{"past thirty days", 720*time.Hour + time.Second, 2592000},
		{"year", 8760 * time.Hour, 2592000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, memcacheExpiration(tt.ttl))
		})
	}
}

func TestMemcacheCodeCacheClampsTTL(t *testing.T) {
	c := NewMemcacheCodeCache(memcache.New("127.0.0.1:1"), 721*time.Hour)
	assert.Equal(t, int32(2592000), c.ttl)
}
