// Package observability lets the binary observe fetches, layouts, live
// simulations, cache lookups and outgoing HTTP calls without the library
// packages importing a metrics or tracing backend.
//
// Libraries emit events through the accessors:
//
//	observability.Pipeline().OnFetchStart(ctx, "kusto")
//
// and main registers implementations once at startup:
//
//	observability.SetPipelineHooks(&myPipelineHooks{})
//
// Every category defaults to a no-op. Embedding the Noop types lets an
// implementation override only the events it cares about.
package observability

import (
	"context"
	"sync"
	"time"
)

// PipelineHooks receives events from the fetch, layout and render pipeline.
type PipelineHooks interface {
	// Fetch events
	OnFetchStart(ctx context.Context, source string)
	OnFetchComplete(ctx context.Context, source string, nodeCount, edgeCount int, duration time.Duration, err error)

	// Layout events
	OnLayoutStart(ctx context.Context, nodeCount int)
	OnLayoutComplete(ctx context.Context, hierarchical bool, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// SimulationHooks receives events from live force simulations.
type SimulationHooks interface {
	// OnSimulationStart records a simulation starting in a container.
	OnSimulationStart(ctx context.Context, container, generation string, bodies int)

	// OnSimulationStop records a simulation ending. err is nil when the
	// simulation converged and context.Canceled when it was replaced.
	OnSimulationStop(ctx context.Context, container, generation string, steps int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from outgoing HTTP requests.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records a transport failure; no response was received.
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnFetchStart(context.Context, string) {}
func (NoopPipelineHooks) OnFetchComplete(context.Context, string, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnLayoutStart(context.Context, int)                               {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, bool, time.Duration, error)     {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                          {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {}

// NoopSimulationHooks ignores every event.
type NoopSimulationHooks struct{}

func (NoopSimulationHooks) OnSimulationStart(context.Context, string, string, int) {}
func (NoopSimulationHooks) OnSimulationStop(context.Context, string, string, int, time.Duration, error) {
}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// slot holds one registered hook implementation.
type slot[T any] struct {
	mu  sync.RWMutex
	def T
	cur T
}

func newSlot[T any](def T) *slot[T] {
	return &slot[T]{def: def, cur: def}
}

func (s *slot[T]) load() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// store ignores nil so a stray Set(nil) cannot break emitters.
func (s *slot[T]) store(h T) {
	if any(h) == nil {
		return
	}
	s.mu.Lock()
	s.cur = h
	s.mu.Unlock()
}

func (s *slot[T]) reset() {
	s.mu.Lock()
	s.cur = s.def
	s.mu.Unlock()
}

var (
	pipelineSlot   = newSlot[PipelineHooks](NoopPipelineHooks{})
	simulationSlot = newSlot[SimulationHooks](NoopSimulationHooks{})
	cacheSlot      = newSlot[CacheHooks](NoopCacheHooks{})
	httpSlot       = newSlot[HTTPHooks](NoopHTTPHooks{})
)

// SetPipelineHooks registers pipeline hooks. Call it before the first fetch.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.store(h) }

func SetSimulationHooks(h SimulationHooks) { simulationSlot.store(h) }

// SetCacheHooks registers cache hooks. Caches opened earlier report to the
// new hooks as well, since they look them up per event.
func SetCacheHooks(h CacheHooks) { cacheSlot.store(h) }

func SetHTTPHooks(h HTTPHooks) { httpSlot.store(h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.load() }

// Simulation returns the registered simulation hooks.
func Simulation() SimulationHooks { return simulationSlot.load() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.load() }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return httpSlot.load() }

// Reset restores every category to its no-op default.
func Reset() {
	pipelineSlot.reset()
	simulationSlot.reset()
	cacheSlot.reset()
	httpSlot.reset()
}
