package render

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/stormgraph/pkg/errors"
	"github.com/matzehuels/stormgraph/pkg/force"
	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/layout"
	"github.com/matzehuels/stormgraph/pkg/observability"
)

// Frame is delivered to watchers after every redraw of a container.
type Frame struct {
	Container string
	Scene     Scene
}

// =============================================================================
// Host
// =============================================================================

// Host owns a set of named display containers.
type Host struct {
	opts   Options
	logger *log.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	containers map[string]*Container
}

// NewHost creates a host whose containers default to opts. A nil logger
// discards output.
func NewHost(opts Options, logger *log.Logger) *Host {
	opts.SetDefaults()
	if logger == nil {
		logger = log.New(io.Discard)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Host{
		opts:       opts,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
		containers: make(map[string]*Container),
	}
}

// AddContainer registers a container. Zero width or height uses the
// host's viewport size.
func (h *Host) AddContainer(id string, width, height float64) (*Container, error) {
	if err := errs.ValidateContainerID(id); err != nil {
		return nil, err
	}
	opts := h.opts
	if width > 0 {
		opts.Width = width
	}
	if height > 0 {
		opts.Height = height
	}
	opts.SetDefaults()

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.containers[id]; ok {
		return nil, errs.New(errs.ErrCodeInvalidInput, "container %q already exists", id)
	}
	c := &Container{
		id:       id,
		opts:     opts,
		surface:  NewSurface(opts),
		logger:   h.logger.With("container", id),
		parent:   h.ctx,
		watchers: make(map[int]func(Frame)),
	}
	h.containers[id] = c
	return c, nil
}

// Container returns the container registered under id.
func (h *Host) Container(id string) (*Container, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.containers[id]
	if !ok {
		return nil, &errs.ContainerNotFoundError{ID: id}
	}
	return c, nil
}

// RemoveContainer stops the container's simulation and forgets it.
func (h *Host) RemoveContainer(id string) error {
	h.mu.Lock()
	c, ok := h.containers[id]
	delete(h.containers, id)
	h.mu.Unlock()
	if !ok {
		return &errs.ContainerNotFoundError{ID: id}
	}
	c.stop()
	return nil
}

// RenderGraph draws g into the container named containerID, replacing
// whatever it showed before.
//
// An unknown container fails with a ContainerNotFoundError and a graph
// with a dangling edge fails with a DataIntegrityError; in both cases the
// container keeps its previous scene and simulation. Otherwise the
// previous simulation is stopped, the scene is rebuilt and a new
// simulation starts animating it. onNodeClick receives the ids of clicked
// nodes; lastSelected is highlighted from the first frame on.
func (h *Host) RenderGraph(containerID string, g graph.Graph, onNodeClick func(string), lastSelected string) error {
	c, err := h.Container(containerID)
	if err != nil {
		h.logger.Error("render target missing", "container", containerID)
		return err
	}
	return c.Render(g, onNodeClick, lastSelected)
}

// Close stops every container's simulation.
func (h *Host) Close() {
	h.cancel()
	h.mu.Lock()
	cs := make([]*Container, 0, len(h.containers))
	for _, c := range h.containers {
		cs = append(cs, c)
	}
	h.containers = make(map[string]*Container)
	h.mu.Unlock()
	for _, c := range cs {
		c.stop()
	}
}

// =============================================================================
// Container
// =============================================================================

// Container is one display area: a surface plus the simulation that
// currently drives it. At most one simulation runs per container.
type Container struct {
	id      string
	opts    Options
	surface *Surface
	logger  *log.Logger
	parent  context.Context

	renderMu sync.Mutex // Serializes Render

	mu       sync.Mutex
	onClick  func(string)
	nodes    map[string]bool
	cancel   context.CancelFunc
	done     chan struct{}
	watchers map[int]func(Frame)
	nextID   int
}

// ID returns the container id.
func (c *Container) ID() string { return c.id }

// Surface returns the container's surface.
func (c *Container) Surface() *Surface { return c.surface }

// Render validates g and, if valid, replaces the container's scene and
// simulation. See [Host.RenderGraph].
func (c *Container) Render(g graph.Graph, onNodeClick func(string), lastSelected string) error {
	if err := g.Validate(); err != nil {
		c.logger.Error("graph rejected", "err", err)
		return err
	}

	c.renderMu.Lock()
	defer c.renderMu.Unlock()

	c.stop()

	lay := layout.Compute(g, c.opts.Layout)
	sim := force.Build(g, lay, c.opts.Simulation, c.opts.Force)

	c.surface.Rebuild(g, lay, sim.Generation())
	c.surface.SetHighlight(lastSelected)
	c.surface.Apply(sim.Snapshot())

	nodes := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = true
	}
	ctx, cancel := context.WithCancel(c.parent)
	done := make(chan struct{})

	c.mu.Lock()
	c.onClick = onNodeClick
	c.nodes = nodes
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	c.logger.Debug("render", "nodes", len(g.Nodes), "edges", len(g.Edges),
		"hierarchical", lay.Hierarchical, "generation", sim.Generation())
	c.notify()
	go c.run(ctx, sim, done)
	return nil
}

func (c *Container) run(ctx context.Context, sim *force.Simulation, done chan struct{}) {
	defer close(done)

	hooks := observability.Simulation()
	start := time.Now()
	hooks.OnSimulationStart(ctx, c.id, sim.Generation(), sim.Len())

	err := sim.Run(ctx, c.opts.TickInterval, func(snap force.Snapshot) {
		if c.surface.Apply(snap) {
			c.notify()
		}
	})

	hooks.OnSimulationStop(context.WithoutCancel(ctx), c.id, sim.Generation(), sim.Steps(), time.Since(start), err)
	c.logger.Debug("simulation stopped", "generation", sim.Generation(), "steps", sim.Steps(), "err", err)
}

// stop cancels the running simulation and waits for its goroutine.
func (c *Container) stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Wait blocks until the current simulation finishes or ctx is done.
func (c *Container) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Click reports a click on the node id. The click callback runs only when
// id is a node of the current graph; Click reports whether it ran.
func (c *Container) Click(id string) bool {
	c.mu.Lock()
	fn, known := c.onClick, c.nodes[id]
	c.mu.Unlock()
	if fn == nil || !known {
		return false
	}
	fn(id)
	return true
}

// SetHighlight recolours the scene for a new last selected city and
// redraws.
func (c *Container) SetHighlight(last string) {
	c.surface.SetHighlight(last)
	c.notify()
}

// Watch registers fn to receive a frame after every redraw. The returned
// function removes the registration.
func (c *Container) Watch(fn func(Frame)) (unwatch func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.watchers[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.watchers, id)
		c.mu.Unlock()
	}
}

// Redraw notifies watchers without changing the scene, for example after
// the view transform changed.
func (c *Container) Redraw() {
	c.notify()
}

func (c *Container) notify() {
	c.mu.Lock()
	if len(c.watchers) == 0 {
		c.mu.Unlock()
		return
	}
	fns := make([]func(Frame), 0, len(c.watchers))
	for _, fn := range c.watchers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	frame := Frame{Container: c.id, Scene: c.surface.Scene()}
	for _, fn := range fns {
		fn(frame)
	}
}
