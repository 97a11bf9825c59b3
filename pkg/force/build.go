package force

import (
	"unicode/utf8"

	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/layout"
)

// Force names used by Build.
const (
	ForceLink     = "link"
	ForceCharge   = "charge"
	ForceLevel    = "y"
	ForceSubtree  = "x"
	ForceCollide  = "collide"
	ForceCentered = "center"
)

// Default force parameters for hierarchical city graphs.
const (
	DefaultLinkDistance      = 150.0
	DefaultLinkCharWidth     = 6.0
	DefaultCharge            = -350.0
	DefaultLevelSpacing      = 180.0
	DefaultLevelOffset       = 100.0
	DefaultLevelStrength     = 1.0
	DefaultSubtreeSeparation = 400.0
	DefaultSubtreeStrength   = 0.8
	DefaultCollidePadding    = 25.0
	DefaultCollideCharWidth  = 4.0
)

// Params tunes the forces installed by Build.
type Params struct {
	LinkDistance        float64 `toml:"link_distance"`
	LinkDistanceByLabel bool    `toml:"link_distance_by_label"` // Lengthen links by their label
	LinkCharWidth       float64 `toml:"link_char_width"`
	Charge              float64 `toml:"charge"`
	LevelSpacing        float64 `toml:"level_spacing"`
	LevelOffset         float64 `toml:"level_offset"`
	LevelStrength       float64 `toml:"level_strength"`
	SubtreeSeparation   float64 `toml:"subtree_separation"`
	SubtreeStrength     float64 `toml:"subtree_strength"`
	CollidePadding      float64 `toml:"collide_padding"`
	CollideCharWidth    float64 `toml:"collide_char_width"`
}

// DefaultParams returns the default force parameters.
func DefaultParams() Params {
	var p Params
	p.SetDefaults()
	return p
}

// SetDefaults fills zero fields.
func (p *Params) SetDefaults() {
	if p.LinkDistance == 0 {
		p.LinkDistance = DefaultLinkDistance
	}
	if p.LinkCharWidth == 0 {
		p.LinkCharWidth = DefaultLinkCharWidth
	}
	if p.Charge == 0 {
		p.Charge = DefaultCharge
	}
	if p.LevelSpacing == 0 {
		p.LevelSpacing = DefaultLevelSpacing
	}
	if p.LevelOffset == 0 {
		p.LevelOffset = DefaultLevelOffset
	}
	if p.LevelStrength == 0 {
		p.LevelStrength = DefaultLevelStrength
	}
	if p.SubtreeSeparation == 0 {
		p.SubtreeSeparation = DefaultSubtreeSeparation
	}
	if p.SubtreeStrength == 0 {
		p.SubtreeStrength = DefaultSubtreeStrength
	}
	if p.CollidePadding == 0 {
		p.CollidePadding = DefaultCollidePadding
	}
	if p.CollideCharWidth == 0 {
		p.CollideCharWidth = DefaultCollideCharWidth
	}
}

// LinkLength is the target separation of l. With LinkDistanceByLabel set, each
// rune of the label adds LinkCharWidth so the label fits between the ends.
func (p Params) LinkLength(l LinkSpec) float64 {
	if !p.LinkDistanceByLabel {
		return p.LinkDistance
	}
	return p.LinkDistance + p.LinkCharWidth*float64(utf8.RuneCountInString(l.Label))
}

// CollideRadius is the collision radius for a node label: wide enough that
// neighbouring labels do not overlap.
func (p Params) CollideRadius(id string) float64 {
	return float64(utf8.RuneCountInString(id))*p.CollideCharWidth + p.CollidePadding
}

// LevelY is the target y of a level band.
func (p Params) LevelY(level int) float64 {
	return float64(level)*p.LevelSpacing + p.LevelOffset
}

// SubtreeX is the target x of subtree slot idx out of count slots, spread
// symmetrically around width/2.
func (p Params) SubtreeX(idx, count int, width float64) float64 {
	start := (width - float64(count-1)*p.SubtreeSeparation) / 2
	return start + float64(idx)*p.SubtreeSeparation
}

// Build creates a simulation for g using the derived layout attributes.
//
// Link, charge, level (y) and collide forces are always installed. When
// lay is hierarchical the x force places the root at the center and each
// subtree in its slot; nodes outside any subtree are pulled to the center
// line. Otherwise a centering force keeps the picture in the viewport.
func Build(g graph.Graph, lay layout.Result, opts Options, p Params) *Simulation {
	p.SetDefaults()
	s := New(g.NodeIDs(), opts)
	width, height := s.opts.Width, s.opts.Height

	byID := make(map[string]layout.Node, len(lay.Nodes))
	for _, n := range lay.Nodes {
		byID[n.ID] = n
	}

	links := make([]LinkSpec, len(g.Edges))
	for i, e := range g.Edges {
		links[i] = LinkSpec{Source: e.Source, Target: e.Target, Label: e.Label}
	}

	link := &Link{Links: links, Distance: p.LinkDistance}
	if p.LinkDistanceByLabel {
		link.DistanceFn = p.LinkLength
	}
	s.AddForce(ForceLink, link)
	s.AddForce(ForceCharge, &ManyBody{Strength: p.Charge})
	s.AddForce(ForceLevel, &PositionY{Target: func(b Body) (float64, float64) {
		return p.LevelY(byID[b.ID].Level), p.LevelStrength
	}})

	if lay.Hierarchical {
		s.AddForce(ForceSubtree, &PositionX{Target: func(b Body) (float64, float64) {
			n, ok := byID[b.ID]
			if b.ID == lay.RootID || !ok || !n.HasSubtree() {
				return width / 2, p.SubtreeStrength
			}
			return p.SubtreeX(n.Subtree, lay.SubtreeCount, width), p.SubtreeStrength
		}})
	} else {
		s.AddForce(ForceCentered, &Center{X: width / 2, Y: height / 2})
	}

	s.AddForce(ForceCollide, &Collide{Radius: func(b Body) float64 {
		return p.CollideRadius(b.ID)
	}})
	return s
}
