package services

import (
	"context"
	"time"
)

// Cache is a TTL key-value store shared by concurrent requests.
//
// Keys are built with a tenant prefix (see cache.Key) so Clear can drop a
// single tenant's entries. Implementations return errors for transport
// failures only; a missing or expired key is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, overwriting any existing entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Clear removes every entry belonging to tenantID.
	Clear(ctx context.Context, tenantID string) error
}
