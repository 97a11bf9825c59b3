package graph

import (
	"fmt"

	errs "github.com/matzehuels/stormgraph/pkg/errors"
)

// Node is a city.
type Node struct {
	ID string `json:"id" yaml:"id" bson:"id"`
}

// Edge is a directed relationship between two cities.
type Edge struct {
	Source string `json:"source" yaml:"source" bson:"source"`
	Target string `json:"target" yaml:"target" bson:"target"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty" bson:"label,omitempty"`
	Weight int    `json:"weight,omitempty" yaml:"weight,omitempty" bson:"weight,omitempty"`
}

// Graph is the complete input to a render.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges" bson:"edges"`
}

// StormLabel returns the edge label used for a storm count, e.g.
// "12 storm(s)". Every count uses the same form.
func StormLabel(count int) string {
	return fmt.Sprintf("%d storm(s)", count)
}

// Validate checks that node ids are non-empty and unique and that every
// edge endpoint names an existing node. The first violation is returned as
// an [errs.DataIntegrityError].
func (g Graph) Validate() error {
	seen := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return &errs.DataIntegrityError{Reason: "empty node id"}
		}
		if _, dup := seen[n.ID]; dup {
			return &errs.DataIntegrityError{Missing: n.ID, Reason: "duplicate node id"}
		}
		seen[n.ID] = struct{}{}
	}
	for _, e := range g.Edges {
		if _, ok := seen[e.Source]; !ok {
			return &errs.DataIntegrityError{Source: e.Source, Target: e.Target, Missing: e.Source}
		}
		if _, ok := seen[e.Target]; !ok {
			return &errs.DataIntegrityError{Source: e.Source, Target: e.Target, Missing: e.Target}
		}
	}
	return nil
}

// IsEmpty reports whether the graph has no nodes.
func (g Graph) IsEmpty() bool {
	return len(g.Nodes) == 0
}

// NodeIDs returns node ids in input order.
func (g Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Index maps each node id to its position in Nodes.
func (g Graph) Index() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// HasNode reports whether id is a node of g.
func (g Graph) HasNode(id string) bool {
	for _, n := range g.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

// Children returns the outgoing adjacency lists keyed by source id. Targets
// keep edge order and may repeat when parallel edges exist.
func (g Graph) Children() map[string][]string {
	out := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		out[e.Source] = append(out[e.Source], e.Target)
	}
	return out
}

// InDegree counts incoming edges per node id. Nodes without incoming
// edges are present with a zero count.
func (g Graph) InDegree() map[string]int {
	in := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		in[n.ID] = 0
	}
	for _, e := range g.Edges {
		in[e.Target]++
	}
	return in
}

// Degree counts incident edges per node id, counting each edge once at
// each endpoint. This is the "count" used by link forces.
func (g Graph) Degree() map[string]int {
	deg := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		deg[e.Source]++
		deg[e.Target]++
	}
	return deg
}
