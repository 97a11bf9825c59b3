// Package cache stores fetched storm graphs and rendered artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for hosts that run several servers
//   - [NullCache]: stores nothing, used when caching is disabled
//
// # Keys
//
// Keys come from a [Keyer] so that every component derives them the same
// way. [NewKeyer] hashes the inputs that determine the cached value under
// an optional namespace.
//
// # Instrumentation
//
// [WithHooks] reports hits, misses and writes to the registered
// observability cache hooks.
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/stormgraph/pkg/observability"
)

// Cache is a byte-oriented key/value store with per-entry TTLs.
//
// Get reports a miss as (nil, false, nil); an error means the backend
// itself failed. A zero TTL means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs.
const (
	// TTLGraph bounds how stale fetched storm data may get.
	TTLGraph = time.Hour

	// TTLArtifact applies to rendered output, which is fully determined
	// by its key.
	TTLArtifact = 7 * 24 * time.Hour
)

// WithHooks wraps c so that every lookup and write is reported to
// observability.Cache(). The key type is the kind segment of the key.
func WithHooks(c Cache) Cache {
	if c == nil {
		return nil
	}
	return &hooked{Cache: c}
}

type hooked struct {
	Cache
}

func (h *hooked) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := h.Cache.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Cache().OnCacheHit(ctx, keyType(key))
		} else {
			observability.Cache().OnCacheMiss(ctx, keyType(key))
		}
	}
	return data, ok, err
}

func (h *hooked) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := h.Cache.Set(ctx, key, data, ttl)
	if err == nil {
		observability.Cache().OnCacheSet(ctx, keyType(key), len(data))
	}
	return err
}
