// Package cache provides the byte-oriented store the console keeps schemas,
// list pages and filter options in. Values carry their own TTL; a zero TTL
// means no expiry.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("cache: key not found")

// Cache is a TTL key-value store. Implementations must be safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix drops every key starting with prefix. Used to invalidate
	// all cached pages of one model after a mutation.
	DeletePrefix(ctx context.Context, prefix string) error
	Flush(ctx context.Context) error
}
