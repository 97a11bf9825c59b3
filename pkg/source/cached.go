package source

import (
	"context"
	"time"

	"github.com/matzehuels/stormgraph/pkg/cache"
	"github.com/matzehuels/stormgraph/pkg/graph"
)

// Cached serves graphs from a cache and falls back to the wrapped source
// on a miss. Fetched graphs are stored for TTL.
type Cached struct {
	Source  Source
	Cache   cache.Cache
	Key     string
	TTL     time.Duration
	Refresh bool // Skip the lookup but still store the result
}

// NewCached wraps src. The key is derived from the source name and opts.
func NewCached(src Source, c cache.Cache, keyer cache.Keyer, opts cache.GraphKeyOpts) *Cached {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewKeyer("")
	}
	return &Cached{
		Source: src,
		Cache:  c,
		Key:    keyer.GraphKey(src.Name(), opts),
		TTL:    cache.TTLGraph,
	}
}

// Name implements Source.
func (c *Cached) Name() string { return c.Source.Name() }

// Fetch implements Source.
func (c *Cached) Fetch(ctx context.Context) (graph.Graph, error) {
	g, _, err := c.FetchWithCacheInfo(ctx)
	return g, err
}

// FetchWithCacheInfo fetches like Fetch and reports whether the graph came
// from the cache. Cache failures never fail the fetch; a cached entry that
// no longer decodes into a valid graph counts as a miss.
func (c *Cached) FetchWithCacheInfo(ctx context.Context) (graph.Graph, bool, error) {
	if !c.Refresh {
		if data, ok, _ := c.Cache.Get(ctx, c.Key); ok {
			if g, err := graph.Unmarshal(data); err == nil {
				return g, true, nil
			}
		}
	}

	g, err := c.Source.Fetch(ctx)
	if err != nil {
		return graph.Graph{}, false, err
	}
	if data, err := graph.Marshal(g); err == nil {
		_ = c.Cache.Set(ctx, c.Key, data, c.TTL)
	}
	return g, false, nil
}

// Keyed is implemented by sources whose results may be cached. Sources
// that read local files do not implement it.
type Keyed interface {
	CacheKey() cache.GraphKeyOpts
}

// Cacheable reports whether src's results may be cached, and under which
// key inputs.
func Cacheable(src Source) (cache.GraphKeyOpts, bool) {
	k, ok := src.(Keyed)
	if !ok {
		return cache.GraphKeyOpts{}, false
	}
	return k.CacheKey(), true
}
