package cache

import (
	"context"
	"time"
)

// NullCache stores nothing, so every fit and render is recomputed. The CLI
// uses it for --no-cache and when caching is disabled in the config.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache {
	return NullCache{}
}

// Get always misses.
func (NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards data.
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Delete is a no-op.
func (NullCache) Delete(context.Context, string) error { return nil }

// Close is a no-op.
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
