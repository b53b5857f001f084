// Package cache stores computed artifacts (layouts) as opaque bytes keyed by
// a content hash.
//
// Three backends are provided: [NullCache] (disabled), [FileCache] (CLI,
// persisted under the user's cache directory) and [RedisCache] (shared by
// server instances).
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored bytes and true, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKey derives the cache key of a layout from the hash of the graph
// snapshot, the strategy name and the layout options.
func LayoutKey(graphHash, strategy string, opts any) string {
	return hashKey("layout", graphHash, strategy, opts)
}
