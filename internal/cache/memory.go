package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is an unbounded in-process cache backed by go-cache. Values are
// stored as JSON snapshots, so callers never share memory with an entry.
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a cache whose entries expire after defaultTTL unless
// Set is given its own ttl. Expired entries are purged every cleanupInterval;
// a non-positive interval leaves them in place until Cleanup is called, but
// they are never returned by Get.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration) *MemoryCache {
	if defaultTTL <= 0 {
		defaultTTL = DefaultCalendarTTL
	}
	if cleanupInterval < 0 {
		cleanupInterval = 0
	}
	return &MemoryCache{items: gocache.New(defaultTTL, cleanupInterval)}
}

func (c *MemoryCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	v, ok := c.items.Get(key)
	if !ok {
		return false, nil
	}

	payload, ok := v.([]byte)
	if !ok {
		return false, fmt.Errorf("cache value for %s has type %T", key, v)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}

	c.items.Set(key, payload, ttl)
	return nil
}

// Len counts stored entries, expired ones included until a cleanup runs.
func (c *MemoryCache) Len() int {
	return c.items.ItemCount()
}

// Cleanup drops expired entries.
func (c *MemoryCache) Cleanup() {
	c.items.DeleteExpired()
}

func (c *MemoryCache) Close() error {
	c.items.Flush()
	return nil
}
