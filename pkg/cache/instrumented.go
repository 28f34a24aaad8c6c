package cache

import (
	"context"
	"time"

	"github.com/matzehuels/groupfit/pkg/observability"
)

// Instrument wraps c so that every Get reports a hit or miss and every Set
// reports a write to observability.Cache().
func Instrument(c Cache) Cache {
	if c == nil {
		return nil
	}
	return &instrumented{inner: c}
}

type instrumented struct {
	inner Cache
}

func (c *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := c.inner.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, KeyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, KeyType(key))
		}
	}
	return data, ok, err
}

func (c *instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := c.inner.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, KeyType(key), len(data))
	}
	return err
}

func (c *instrumented) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

func (c *instrumented) Close() error {
	return c.inner.Close()
}
