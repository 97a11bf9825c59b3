package render

import (
	"sync"

	"github.com/matzehuels/stormgraph/pkg/force"
	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/layout"
)

// Surface holds a scene and its view transform.
type Surface struct {
	mu        sync.RWMutex
	opts      Options
	scene     Scene
	transform Transform
}

// NewSurface returns an empty surface.
func NewSurface(opts Options) *Surface {
	opts.SetDefaults()
	return &Surface{
		opts:      opts,
		scene:     Scene{Width: opts.Width, Height: opts.Height},
		transform: Identity,
	}
}

// Options returns the surface's options with defaults applied.
func (s *Surface) Options() Options {
	return s.opts
}

// Rebuild replaces the scene wholesale for a new graph. The scene accepts
// snapshots from the simulation identified by generation only.
// The last selected city and the view transform carry over.
func (s *Surface) Rebuild(g graph.Graph, lay layout.Result, generation string) {
	sc := newScene(g, lay, generation, s.opts)
	s.mu.Lock()
	defer s.mu.Unlock()
	sc.highlight(s.scene.LastSelected, s.opts.DefaultColor, s.opts.HighlightColor)
	s.scene = sc
}

// Apply moves the scene to the positions in snap. Snapshots from a
// different simulation are ignored and Apply reports false.
func (s *Surface) Apply(snap force.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Generation != s.scene.Generation {
		return false
	}
	s.scene.Step = snap.Step
	s.scene.Alpha = snap.Alpha
	s.scene.Done = snap.Done
	s.scene.place(snap.Positions, s.opts.EdgeLabelOffset)
	return true
}

// SetHighlight recolours nodes so that only last uses the highlight
// colour. An empty last clears the highlight.
func (s *Surface) SetHighlight(last string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scene.highlight(last, s.opts.DefaultColor, s.opts.HighlightColor)
}

// Scene returns a copy of the current scene.
func (s *Surface) Scene() Scene {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc := s.scene.clone()
	sc.Transform = s.transform
	return sc
}

// Generation returns the generation of the simulation the scene follows.
func (s *Surface) Generation() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scene.Generation
}

// Transform returns the current view transform.
func (s *Surface) Transform() Transform {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transform
}

// Zoom scales the view by factor around the screen point (cx, cy).
func (s *Surface) Zoom(factor, cx, cy float64) Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	if factor > 0 {
		s.store(s.transform.Zoom(factor, cx, cy, s.opts.MinScale, s.opts.MaxScale))
	}
	return s.transform
}

// Pan moves the view by (dx, dy) screen pixels. Moves that would make the
// transform non-finite are ignored.
func (s *Surface) Pan(dx, dy float64) Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store(s.transform.Pan(dx, dy))
	return s.transform
}

// SetTransform replaces the view transform, clamping its scale.
func (s *Surface) SetTransform(t Transform) Transform {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store(t.Clamp(s.opts.MinScale, s.opts.MaxScale))
	return s.transform
}

// store replaces the transform unless t has a non-finite component, which
// would leave the scene unencodable. Callers hold s.mu.
func (s *Surface) store(t Transform) {
	if t.Finite() {
		s.transform = t
	}
}

// ResetTransform restores the identity transform.
func (s *Surface) ResetTransform() {
	s.mu.Lock()
	s.transform = Identity
	s.mu.Unlock()
}
