package layout

import "github.com/matzehuels/stormgraph/pkg/graph"

// NoSubtree marks a node that does not descend from any child of the root.
const NoSubtree = -1

// AssignSubtrees assigns a subtree index to every node reachable from a
// child of rootID. The root itself and unreachable nodes are absent from
// the result. When rootID is not a node of g the result is empty.
//
// Seeds are the distinct targets of rootID's outgoing edges in edge order,
// numbered by [Seeds]. Each seed is expanded depth-first with an explicit
// stack before the next seed starts; a node keeps the first index written
// to it. A seed already claimed by an earlier subtree keeps its slot
// number reserved but empty.
func AssignSubtrees(g graph.Graph, rootID string) map[string]int {
	subtrees := make(map[string]int)
	if !g.HasNode(rootID) {
		return subtrees
	}

	children := g.Children()
	visited := map[string]bool{rootID: true}

	for idx, seed := range Seeds(g, rootID) {
		if visited[seed] {
			continue
		}

		stack := []string{seed}
		visited[seed] = true
		for len(stack) > 0 {
			curr := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			subtrees[curr] = idx

			for _, child := range children[curr] {
				if !visited[child] {
					visited[child] = true
					stack = append(stack, child)
				}
			}
		}
	}
	return subtrees
}

// Seeds returns the distinct children of rootID in edge order. The
// position of a child in the result is its subtree index.
func Seeds(g graph.Graph, rootID string) []string {
	var seeds []string
	seen := make(map[string]bool)
	for _, e := range g.Edges {
		if e.Source != rootID || e.Target == rootID || seen[e.Target] {
			continue
		}
		seen[e.Target] = true
		seeds = append(seeds, e.Target)
	}
	return seeds
}
