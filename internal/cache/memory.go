package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"codearchive/internal/domain/services"
)

var _ services.Cache = (*MemoryCache)(nil)

// entry is a cached value with its expiration time
type entry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is an in-process LRU with per-entry TTL. Least recently used
// entries are evicted once maxEntries is reached.
type MemoryCache struct {
	lru    *lru.Cache[string, entry]
	now    func() time.Time
	logger *slog.Logger
}

// NewMemoryCache creates a memory cache holding at most maxEntries values.
func NewMemoryCache(maxEntries int, logger *slog.Logger) (*MemoryCache, error) {
	c, err := lru.New[string, entry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("create LRU cache: %w", err)
	}
	return &MemoryCache{
		lru:    c,
		now:    time.Now,
		logger: logger,
	}, nil
}

// Get returns a copy of the value stored under key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return cloneBytes(e.value), true, nil
}

// Set stores a copy of value under key.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", ttl)
	}
	c.lru.Add(key, entry{value: cloneBytes(value), expiresAt: c.now().Add(ttl)})
	return nil
}

// Clear removes every entry of the tenant. Other tenants are untouched.
func (c *MemoryCache) Clear(_ context.Context, tenantID string) error {
	prefix := tenantPrefix(tenantID)
	removed := 0
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
			removed++
		}
	}
	c.logger.Debug("memory cache cleared", "tenant_id", tenantID, "removed", removed)
	return nil
}

// Len returns the number of entries, including expired ones not yet evicted.
func (c *MemoryCache) Len() int {
	return c.lru.Len()
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
