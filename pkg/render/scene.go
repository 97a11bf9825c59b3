package render

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/layout"
)

// NodeShape is the circle and label drawn for one node.
type NodeShape struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Pos     r2.Vec  `json:"pos"`
	Radius  float64 `json:"radius"`
	Fill    string  `json:"fill"`
	Level   int     `json:"level"`
	Subtree int     `json:"subtree"`
}

// EdgeShape is the line and label drawn for one edge.
type EdgeShape struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Label    string `json:"label"`
	Weight   int    `json:"weight"`
	From     r2.Vec `json:"from"`
	To       r2.Vec `json:"to"`
	LabelPos r2.Vec `json:"labelPos"`

	src, dst int
}

// Scene is the drawable state of one graph.
type Scene struct {
	Generation   string      `json:"generation"`
	Step         int         `json:"step"`
	Alpha        float64     `json:"alpha"`
	Done         bool        `json:"done"`
	Width        float64     `json:"width"`
	Height       float64     `json:"height"`
	LastSelected string      `json:"lastSelected,omitempty"`
	Transform    Transform   `json:"transform"`
	Nodes        []NodeShape `json:"nodes"`
	Edges        []EdgeShape `json:"edges"`
}

// Node returns the shape for id.
func (s Scene) Node(id string) (NodeShape, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeShape{}, false
}

// newScene builds a scene for a validated graph. Node shapes follow the
// graph's node order, which is also the simulation's body order.
func newScene(g graph.Graph, lay layout.Result, generation string, opts Options) Scene {
	idx := g.Index()
	byID := make(map[string]layout.Node, len(lay.Nodes))
	for _, n := range lay.Nodes {
		byID[n.ID] = n
	}

	sc := Scene{
		Generation: generation,
		Width:      opts.Width,
		Height:     opts.Height,
		Nodes:      make([]NodeShape, len(g.Nodes)),
		Edges:      make([]EdgeShape, len(g.Edges)),
	}
	for i, n := range g.Nodes {
		ln, ok := byID[n.ID]
		if !ok {
			ln = layout.Node{ID: n.ID, Subtree: layout.NoSubtree}
		}
		sc.Nodes[i] = NodeShape{
			ID:      n.ID,
			Label:   n.ID,
			Radius:  opts.NodeRadius,
			Fill:    opts.DefaultColor,
			Level:   ln.Level,
			Subtree: ln.Subtree,
		}
	}
	for i, e := range g.Edges {
		sc.Edges[i] = EdgeShape{
			Source: e.Source,
			Target: e.Target,
			Label:  e.Label,
			Weight: e.Weight,
			src:    idx[e.Source],
			dst:    idx[e.Target],
		}
	}
	return sc
}

// place moves nodes to pos and recomputes edge geometry.
func (s *Scene) place(pos []r2.Vec, labelOffset float64) {
	for i := range s.Nodes {
		if i < len(pos) {
			s.Nodes[i].Pos = pos[i]
		}
	}
	for i := range s.Edges {
		e := &s.Edges[i]
		e.From = s.Nodes[e.src].Pos
		e.To = s.Nodes[e.dst].Pos
		e.LabelPos = EdgeLabelPos(e.From, e.To, labelOffset)
	}
}

// highlight colours the node named last with hi and every other node with def.
func (s *Scene) highlight(last, def, hi string) {
	s.LastSelected = last
	for i := range s.Nodes {
		if last != "" && s.Nodes[i].ID == last {
			s.Nodes[i].Fill = hi
		} else {
			s.Nodes[i].Fill = def
		}
	}
}

func (s Scene) clone() Scene {
	c := s
	c.Nodes = append([]NodeShape(nil), s.Nodes...)
	c.Edges = append([]EdgeShape(nil), s.Edges...)
	return c
}

// EdgeLabelPos returns the midpoint of from-to pushed offset units along
// the line's left-hand unit normal. A zero-length edge yields the midpoint.
func EdgeLabelPos(from, to r2.Vec, offset float64) r2.Vec {
	mid := r2.Scale(0.5, r2.Add(from, to))
	d := r2.Sub(to, from)
	n := r2.Norm(d)
	if n == 0 {
		return mid
	}
	perp := r2.Vec{X: -d.Y / n, Y: d.X / n}
	return r2.Add(mid, r2.Scale(offset, perp))
}
