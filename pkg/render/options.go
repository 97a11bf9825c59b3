package render

import (
	"time"

	"github.com/matzehuels/stormgraph/pkg/force"
	"github.com/matzehuels/stormgraph/pkg/layout"
)

// Defaults for the render surface.
const (
	DefaultWidth           = 800.0
	DefaultHeight          = 600.0
	DefaultNodeRadius      = 10.0
	DefaultEdgeLabelOffset = 10.0
	DefaultLabelDX         = 12.0
	DefaultMinScale        = 0.1
	DefaultMaxScale        = 8.0

	DefaultColor          = "#008000"
	DefaultHighlightColor = "#d62728"
	DefaultEdgeColor      = "#999999"
	DefaultTextColor      = "#000000"
)

// Options configures a surface and the simulation behind it.
type Options struct {
	Width           float64
	Height          float64
	NodeRadius      float64
	EdgeLabelOffset float64 // Perpendicular distance of edge labels from the line
	LabelDX         float64 // Horizontal offset of node labels from the circle center
	MinScale        float64
	MaxScale        float64

	DefaultColor   string
	HighlightColor string
	EdgeColor      string

	// TickInterval paces live simulations. Zero means
	// force.DefaultTickInterval.
	TickInterval time.Duration

	Layout     layout.Options
	Force      force.Params
	Simulation force.Options
}

// DefaultOptions returns options with every default applied.
func DefaultOptions() Options {
	var o Options
	o.SetDefaults()
	return o
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.NodeRadius == 0 {
		o.NodeRadius = DefaultNodeRadius
	}
	if o.EdgeLabelOffset == 0 {
		o.EdgeLabelOffset = DefaultEdgeLabelOffset
	}
	if o.LabelDX == 0 {
		o.LabelDX = DefaultLabelDX
	}
	if o.MinScale == 0 {
		o.MinScale = DefaultMinScale
	}
	if o.MaxScale == 0 {
		o.MaxScale = DefaultMaxScale
	}
	if o.DefaultColor == "" {
		o.DefaultColor = DefaultColor
	}
	if o.HighlightColor == "" {
		o.HighlightColor = DefaultHighlightColor
	}
	if o.EdgeColor == "" {
		o.EdgeColor = DefaultEdgeColor
	}
	if o.TickInterval == 0 {
		o.TickInterval = force.DefaultTickInterval
	}
	o.Force.SetDefaults()
	o.Simulation.Width = o.Width
	o.Simulation.Height = o.Height
	o.Simulation.SetDefaults()
}
