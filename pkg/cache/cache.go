// Package cache stores fit results and rendered artifacts by content key.
//
// # Overview
//
// Fitting is cheap, but rendering PNG/PDF shells out to rsvg-convert and
// Graphviz layout is not free. The pipeline therefore caches both stages:
//
//   - Fit results, keyed by the hash of the input diagram plus fit options
//   - Artifacts, keyed by the hash of the fitted diagram plus render options
//
// Because keys are content hashes, entries never go stale; TTLs only bound
// disk or memory use.
//
// # Backends
//
//   - [FileCache]: one file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for server deployments
//   - [NullCache]: caching disabled
//
// [Instrument] wraps any backend so hits, misses and writes are reported to
// observability.CacheHooks.
//
// # Keys
//
// A [Keyer] builds keys. [DefaultKeyer] hashes options into the key;
// [ScopedKeyer] adds a prefix, such as the build version, so that
// incompatible results never share keys.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations are safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
