package cache

import (
	"context"
	"time"
)

const (
	DefaultCalendarTTL = 6 * time.Hour
	DefaultSearchTTL   = time.Hour
)

// Cache stores JSON-serializable values with a per-entry time-to-live.
// Values are copied on Set, so a stored entry never changes until it is
// overwritten. A ttl <= 0 on Set selects the cache's default TTL.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Close() error
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	return false, nil
}

func (c *NoOpCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}
