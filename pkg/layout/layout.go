package layout

import "github.com/matzehuels/stormgraph/pkg/graph"

// DefaultRootID is the designated root of hierarchical graphs.
const DefaultRootID = "Root"

// Options configures [Compute].
type Options struct {
	// RootID names the node whose children seed subtrees. Empty means
	// DefaultRootID.
	RootID string
}

// Node is a graph node with its derived layout attributes.
type Node struct {
	ID      string `json:"id"`
	Level   int    `json:"level"`
	Subtree int    `json:"subtree"` // NoSubtree when undefined
}

// HasSubtree reports whether the node descends from a child of the root.
func (n Node) HasSubtree() bool { return n.Subtree != NoSubtree }

// Result holds the derived attributes for a whole graph.
type Result struct {
	Nodes        []Node `json:"nodes"` // Same order as the input graph
	RootID       string `json:"root_id"`
	Hierarchical bool   `json:"hierarchical"`  // RootID is a node of the graph
	SubtreeCount int    `json:"subtree_count"` // Number of subtree slots
	MaxLevel     int    `json:"max_level"`     // -1 for an empty graph
}

// Compute runs level and subtree assignment on g. It has no side effects
// on g.
func Compute(g graph.Graph, opts Options) Result {
	rootID := opts.RootID
	if rootID == "" {
		rootID = DefaultRootID
	}

	levels := AssignLevels(g)
	subtrees := AssignSubtrees(g, rootID)

	res := Result{
		Nodes:        make([]Node, len(g.Nodes)),
		RootID:       rootID,
		Hierarchical: g.HasNode(rootID),
		SubtreeCount: len(Seeds(g, rootID)),
		MaxLevel:     -1,
	}
	for i, n := range g.Nodes {
		sub, ok := subtrees[n.ID]
		if !ok {
			sub = NoSubtree
		}
		res.Nodes[i] = Node{ID: n.ID, Level: levels[n.ID], Subtree: sub}
		res.MaxLevel = max(res.MaxLevel, levels[n.ID])
	}
	return res
}

// Levels groups node ids by level, in input order within a level.
func (r Result) Levels() [][]string {
	if r.MaxLevel < 0 {
		return nil
	}
	out := make([][]string, r.MaxLevel+1)
	for _, n := range r.Nodes {
		out[n.Level] = append(out[n.Level], n.ID)
	}
	return out
}
