package render

import (
	"github.com/matzehuels/stormgraph/pkg/force"
	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/layout"
)

// Static lays out g, runs its simulation to convergence without pacing
// and returns a surface showing the final positions.
func Static(g graph.Graph, opts Options, lastSelected string) (*Surface, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	opts.SetDefaults()

	lay := layout.Compute(g, opts.Layout)
	sim := force.Build(g, lay, opts.Simulation, opts.Force)

	s := NewSurface(opts)
	s.Rebuild(g, lay, sim.Generation())
	s.SetHighlight(lastSelected)
	s.Apply(sim.Settle(nil))
	return s, nil
}
