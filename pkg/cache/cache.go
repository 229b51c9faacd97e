// Package cache stores computed artifacts, chiefly base distance matrices,
// between runs.
//
// All-pairs shortest paths cost O(n³) per region and are recomputed for
// every run with identical input files. The runner keys the binary matrix by
// a content hash of the graph (see [Keyer]) and stores it in one of:
//
//   - [FileCache]: JSON envelopes under the user cache directory (CLI default)
//   - [RedisCache]: a shared Redis instance for batch runs on several hosts
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored value and true, or false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) error
}

// DefaultTTL is how long distance matrices stay cached.
const DefaultTTL = 30 * 24 * time.Hour
