package layout

import "github.com/matzehuels/stormgraph/pkg/graph"

// AssignLevels computes the hierarchical level of every node in g.
//
// Roots (in-degree 0) are at level 0. For every edge s -> t the level of t
// is raised to level(s)+1 when that is larger than its current level, and
// the raise is propagated to t's children. Nodes not reached from any root
// get max(level)+1, or 0 when no node is reachable.
//
// # Algorithm
//
// AssignLevels runs a worklist relaxation:
//  1. Seed the queue with every root at level 0
//  2. Pop a node; for each child compute level(node)+1
//  3. If that strictly exceeds the child's level, store it and enqueue the child
//  4. Repeat until the queue is empty
//
// # Cycles
//
// Levels are capped at len(g.Nodes)-1, the longest possible simple path.
// A cycle reachable from a root therefore stops growing at the cap and the
// loop terminates. On acyclic graphs the cap is never hit and
// level(t) >= level(s)+1 holds for every edge.
//
// # Performance
//
// O(V * E) in the worst case, O(V + E) on trees.
func AssignLevels(g graph.Graph) map[string]int {
	levels := make(map[string]int, len(g.Nodes))
	if len(g.Nodes) == 0 {
		return levels
	}
	limit := len(g.Nodes) - 1

	children := g.Children()
	inDegree := g.InDegree()
	queue := make([]string, 0, len(g.Nodes))

	for _, n := range g.Nodes {
		if inDegree[n.ID] == 0 {
			levels[n.ID] = 0
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		next := levels[curr] + 1
		if next > limit {
			continue
		}
		for _, child := range children[curr] {
			if lvl, ok := levels[child]; !ok || next > lvl {
				levels[child] = next
				queue = append(queue, child)
			}
		}
	}

	maxLevel := -1
	for _, lvl := range levels {
		maxLevel = max(maxLevel, lvl)
	}
	for _, n := range g.Nodes {
		if _, ok := levels[n.ID]; !ok {
			levels[n.ID] = maxLevel + 1
		}
	}
	return levels
}
