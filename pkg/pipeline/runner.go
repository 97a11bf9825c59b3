package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stormgraph/pkg/cache"
	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/layout"
	"github.com/matzehuels/stormgraph/pkg/observability"
	"github.com/matzehuels/stormgraph/pkg/render"
	"github.com/matzehuels/stormgraph/pkg/selection"
	"github.com/matzehuels/stormgraph/pkg/source"
)

// Runner executes pipeline stages against a cache. It holds no per-run
// state, so one Runner may serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner returns a runner. Nil arguments fall back to a [cache.NullCache],
// un-namespaced keys and log.Default.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	r := &Runner{Cache: c, Keyer: keyer, Logger: logger}
	if r.Cache == nil {
		r.Cache = cache.NewNullCache()
	}
	if r.Keyer == nil {
		r.Keyer = cache.NewKeyer("")
	}
	if r.Logger == nil {
		r.Logger = log.Default()
	}
	return r
}

// Execute fetches, lays out and renders src.
func (r *Runner) Execute(ctx context.Context, src source.Source, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	res := &Result{}
	var err error

	since := stopwatch()
	res.Graph, res.CacheInfo.FetchHit, err = r.FetchWithCacheInfo(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	res.GraphHash = graph.Hash(res.Graph)
	res.Stats.NodeCount, res.Stats.EdgeCount = len(res.Graph.Nodes), len(res.Graph.Edges)
	res.Stats.FetchTime = since()
	r.Logger.Info("fetched storm graph", "source", src.Name(), "nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount, "cached", res.CacheInfo.FetchHit, "duration", res.Stats.FetchTime)

	since = stopwatch()
	res.Layout = r.ComputeLayout(ctx, res.Graph, opts)
	res.Stats.LayoutTime = since()
	r.Logger.Info("computed layout", "levels", res.Layout.MaxLevel+1, "subtrees", res.Layout.SubtreeCount,
		"hierarchical", res.Layout.Hierarchical, "duration", res.Stats.LayoutTime)

	since = stopwatch()
	res.Artifacts, res.Scene, res.CacheInfo.RenderHit, err = r.RenderWithCacheInfo(ctx, res.Graph, res.Layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Stats.Steps = res.Scene.Step
	res.Stats.RenderTime = since()
	r.Logger.Info("rendered outputs", "formats", opts.Formats, "steps", res.Stats.Steps,
		"cached", res.CacheInfo.RenderHit, "duration", res.Stats.RenderTime)

	return res, nil
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration { return time.Since(start) }
}

// FetchWithCacheInfo fetches src, through the graph cache when the source
// is cacheable, and validates the result. The bool reports a cache hit.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, src source.Source, opts Options) (graph.Graph, bool, error) {
	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, src.Name())
	since := stopwatch()

	var (
		g   graph.Graph
		hit bool
		err error
	)
	if keyOpts, ok := source.Cacheable(src); ok {
		cached := source.NewCached(src, r.Cache, r.Keyer, keyOpts)
		cached.Refresh = opts.Refresh
		g, hit, err = cached.FetchWithCacheInfo(ctx)
	} else {
		g, err = src.Fetch(ctx)
	}
	if err == nil {
		err = g.Validate()
	}

	hooks.OnFetchComplete(ctx, src.Name(), len(g.Nodes), len(g.Edges), since(), err)
	if err != nil {
		return graph.Graph{}, false, err
	}
	return g, hit, nil
}

// Fetch is FetchWithCacheInfo without the cache hit.
func (r *Runner) Fetch(ctx context.Context, src source.Source, opts Options) (graph.Graph, error) {
	g, _, err := r.FetchWithCacheInfo(ctx, src, opts)
	return g, err
}

// ComputeLayout assigns levels and subtrees. It is never cached.
func (r *Runner) ComputeLayout(ctx context.Context, g graph.Graph, opts Options) layout.Result {
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(g.Nodes))
	since := stopwatch()
	lay := layout.Compute(g, opts.LayoutOptions())
	hooks.OnLayoutComplete(ctx, lay.Hierarchical, since(), nil)
	return lay
}

// RenderWithCacheInfo returns the artifacts for opts.Formats. Cached
// formats are read back; only the missing ones are rendered and stored.
// The bool is true when nothing had to be rendered, in which case the
// scene is zero.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g graph.Graph, lay layout.Result, opts Options) (map[string][]byte, render.Scene, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, render.Scene{}, false, err
	}
	if err := g.Validate(); err != nil {
		return nil, render.Scene{}, false, err
	}

	hash := graph.Hash(g)
	keyFor := func(format string) string {
		return r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		data, hit, err := r.Cache.Get(ctx, keyFor(format))
		if err != nil {
			r.Logger.Debug("artifact cache lookup failed", "format", format, "err", err)
		}
		if err != nil || !hit {
			missing = append(missing, format)
			continue
		}
		artifacts[format] = data
	}
	if len(missing) == 0 {
		return artifacts, render.Scene{}, true, nil
	}

	sub := opts
	sub.Formats = missing
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	since := stopwatch()
	rendered, scene, err := Render(ctx, g, lay, sub)
	hooks.OnRenderComplete(ctx, missing, since(), err)
	if err != nil {
		return nil, render.Scene{}, false, err
	}

	for format, data := range rendered {
		artifacts[format] = data
		if err := r.Cache.Set(ctx, keyFor(format), data, cache.TTLArtifact); err != nil {
			r.Logger.Debug("artifact not cached", "format", format, "err", err)
		}
	}
	return artifacts, scene, false, nil
}

// Session is a live view fed by [Runner.Load]: a render container and the
// selection driving its highlight.
type Session struct {
	Host      *render.Host
	Container string
	State     *selection.State

	// OnNodeClick receives clicks on rendered nodes, usually
	// bridge.Bridge.OnNodeClick.
	OnNodeClick func(nodeID string)
}

// Load fetches a graph and renders it into the session's container.
//
// On a fetch failure the container shows an empty graph, the selection is
// left untouched, and the fetch error is returned. On success the selection
// is initialised with the graph's cities before rendering; a missing
// container fails before the selection is touched.
func (r *Runner) Load(ctx context.Context, src source.Source, sess Session, opts Options) (graph.Graph, error) {
	g, hit, err := r.FetchWithCacheInfo(ctx, src, opts)
	if err != nil {
		r.Logger.Error("fetch failed, rendering empty graph", "source", src.Name(), "err", err)
		if rerr := sess.Host.RenderGraph(sess.Container, graph.Graph{}, sess.OnNodeClick, sess.State.LastSelected()); rerr != nil {
			return graph.Graph{}, errors.Join(err, rerr)
		}
		return graph.Graph{}, err
	}

	c, err := sess.Host.Container(sess.Container)
	if err != nil {
		r.Logger.Error("render target missing", "container", sess.Container)
		return g, err
	}
	sess.State.Initialize(g.NodeIDs())
	if err := c.Render(g, sess.OnNodeClick, sess.State.LastSelected()); err != nil {
		return g, err
	}

	r.Logger.Info("loaded storm graph",
		"source", src.Name(),
		"container", sess.Container,
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"cached", hit)
	return g, nil
}

// Close closes the cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}
