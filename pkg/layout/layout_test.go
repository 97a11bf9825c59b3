package layout

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/stormgraph/pkg/graph"
)

func build(ids []string, edges [][2]string) graph.Graph {
	g := graph.Graph{}
	for _, id := range ids {
		g.Nodes = append(g.Nodes, graph.Node{ID: id})
	}
	for _, e := range edges {
		g.Edges = append(g.Edges, graph.Edge{Source: e[0], Target: e[1]})
	}
	return g
}

func TestAssignLevels(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  map[string]int
	}{
		{
			name:  "root with two branches",
			ids:   []string{"Root", "A", "B", "C"},
			edges: [][2]string{{"Root", "A"}, {"Root", "B"}, {"A", "C"}},
			want:  map[string]int{"Root": 0, "A": 1, "B": 1, "C": 2},
		},
		{
			name:  "longest path wins",
			ids:   []string{"R", "A", "B", "C"},
			edges: [][2]string{{"R", "C"}, {"R", "A"}, {"A", "B"}, {"B", "C"}},
			want:  map[string]int{"R": 0, "A": 1, "B": 2, "C": 3},
		},
		{
			name:  "multiple roots",
			ids:   []string{"X", "Y", "Z"},
			edges: [][2]string{{"X", "Z"}, {"Y", "Z"}},
			want:  map[string]int{"X": 0, "Y": 0, "Z": 1},
		},
		{
			name: "isolated nodes are roots",
			ids:  []string{"A", "B"},
			want: map[string]int{"A": 0, "B": 0},
		},
		{
			name:  "unreachable cycle goes below deepest level",
			ids:   []string{"R", "A", "P", "Q"},
			edges: [][2]string{{"R", "A"}, {"P", "Q"}, {"Q", "P"}},
			want:  map[string]int{"R": 0, "A": 1, "P": 2, "Q": 2},
		},
		{
			name:  "pure cycle without roots",
			ids:   []string{"P", "Q"},
			edges: [][2]string{{"P", "Q"}, {"Q", "P"}},
			want:  map[string]int{"P": 0, "Q": 0},
		},
		{
			name:  "reachable cycle is capped",
			ids:   []string{"R", "A", "B"},
			edges: [][2]string{{"R", "A"}, {"A", "B"}, {"B", "A"}},
			want:  map[string]int{"R": 0, "A": 1, "B": 2},
		},
		{
			name: "empty graph",
			want: map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssignLevels(build(tt.ids, tt.edges))
			if len(got) != len(tt.want) {
				t.Fatalf("AssignLevels() = %v, want %v", got, tt.want)
			}
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("level[%s] = %d, want %d", id, got[id], want)
				}
			}
		})
	}
}

func TestAssignSubtrees(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		root  string
		want  map[string]int
	}{
		{
			name:  "two branches",
			ids:   []string{"Root", "A", "B", "C"},
			edges: [][2]string{{"Root", "A"}, {"Root", "B"}, {"A", "C"}},
			root:  "Root",
			want:  map[string]int{"A": 0, "B": 1, "C": 0},
		},
		{
			name:  "first writer wins",
			ids:   []string{"Root", "A", "B", "C"},
			edges: [][2]string{{"Root", "A"}, {"Root", "B"}, {"B", "C"}, {"A", "C"}},
			root:  "Root",
			want:  map[string]int{"A": 0, "B": 1, "C": 0},
		},
		{
			name:  "parallel root edges share a slot",
			ids:   []string{"Root", "A", "B"},
			edges: [][2]string{{"Root", "A"}, {"Root", "A"}, {"Root", "B"}},
			root:  "Root",
			want:  map[string]int{"A": 0, "B": 1},
		},
		{
			name:  "seed claimed by earlier subtree",
			ids:   []string{"Root", "A", "B", "C"},
			edges: [][2]string{{"Root", "A"}, {"A", "B"}, {"Root", "B"}, {"Root", "C"}},
			root:  "Root",
			want:  map[string]int{"A": 0, "B": 0, "C": 2},
		},
		{
			name:  "cycle back to root",
			ids:   []string{"Root", "A"},
			edges: [][2]string{{"Root", "A"}, {"A", "Root"}},
			root:  "Root",
			want:  map[string]int{"A": 0},
		},
		{
			name:  "missing root",
			ids:   []string{"A", "B"},
			edges: [][2]string{{"A", "B"}},
			root:  "Root",
			want:  map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AssignSubtrees(build(tt.ids, tt.edges), tt.root)
			if len(got) != len(tt.want) {
				t.Fatalf("AssignSubtrees() = %v, want %v", got, tt.want)
			}
			for id, want := range tt.want {
				if got[id] != want {
					t.Errorf("subtree[%s] = %d, want %d", id, got[id], want)
				}
			}
		})
	}
}

func TestCompute(t *testing.T) {
	g := build([]string{"Root", "A", "B", "C", "Lonely"}, [][2]string{{"Root", "A"}, {"Root", "B"}, {"A", "C"}})
	res := Compute(g, Options{})

	if res.RootID != DefaultRootID {
		t.Errorf("RootID = %q, want %q", res.RootID, DefaultRootID)
	}
	if !res.Hierarchical {
		t.Error("Hierarchical = false, want true")
	}
	if res.SubtreeCount != 2 {
		t.Errorf("SubtreeCount = %d, want 2", res.SubtreeCount)
	}
	if res.MaxLevel != 2 {
		t.Errorf("MaxLevel = %d, want 2", res.MaxLevel)
	}
	for i, n := range res.Nodes {
		if n.ID != g.Nodes[i].ID {
			t.Errorf("Nodes[%d] = %s, want input order %s", i, n.ID, g.Nodes[i].ID)
		}
	}
	if root := res.Nodes[0]; root.HasSubtree() {
		t.Errorf("root subtree = %d, want NoSubtree", root.Subtree)
	}
	if lonely := res.Nodes[4]; lonely.Level != 0 || lonely.HasSubtree() {
		t.Errorf("Lonely = %+v, want level 0 and no subtree", lonely)
	}

	levels := res.Levels()
	if len(levels) != 3 || len(levels[0]) != 2 || levels[2][0] != "C" {
		t.Errorf("Levels() = %v", levels)
	}
}

func TestComputeEmpty(t *testing.T) {
	res := Compute(graph.Graph{}, Options{RootID: "X"})
	if res.MaxLevel != -1 || res.Hierarchical || len(res.Nodes) != 0 {
		t.Errorf("Compute(empty) = %+v", res)
	}
	if res.Levels() != nil {
		t.Error("Levels() of empty result should be nil")
	}
}

// genGraph draws a graph over up to 12 nodes with arbitrary edges,
// cycles and self loops included.
func genGraph(t *rapid.T) graph.Graph {
	n := rapid.IntRange(1, 12).Draw(t, "nodes")
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i)
	}
	m := rapid.IntRange(0, 30).Draw(t, "edges")
	var edges [][2]string
	for range m {
		s := rapid.IntRange(0, n-1).Draw(t, "source")
		d := rapid.IntRange(0, n-1).Draw(t, "target")
		edges = append(edges, [2]string{ids[s], ids[d]})
	}
	return build(ids, edges)
}

// genDAG draws an acyclic graph by only allowing edges from lower to
// higher node indices.
func genDAG(t *rapid.T) graph.Graph {
	n := rapid.IntRange(1, 12).Draw(t, "nodes")
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("n%d", i)
	}
	if n == 1 {
		return build(ids, nil)
	}
	m := rapid.IntRange(0, 30).Draw(t, "edges")
	var edges [][2]string
	for range m {
		s := rapid.IntRange(0, n-2).Draw(t, "source")
		d := rapid.IntRange(s+1, n-1).Draw(t, "target")
		edges = append(edges, [2]string{ids[s], ids[d]})
	}
	return build(ids, edges)
}

func TestLevelsTerminateAndCoverAllNodes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGraph(t)
		levels := AssignLevels(g)
		in := g.InDegree()
		for _, n := range g.Nodes {
			lvl, ok := levels[n.ID]
			if !ok {
				t.Fatalf("node %s has no level", n.ID)
			}
			if lvl < 0 {
				t.Fatalf("level[%s] = %d, want >= 0", n.ID, lvl)
			}
			if in[n.ID] == 0 && lvl != 0 {
				t.Fatalf("root %s has level %d", n.ID, lvl)
			}
		}
	})
}

func TestLevelsRespectEdgesOnDAG(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genDAG(t)
		levels := AssignLevels(g)
		for _, e := range g.Edges {
			if levels[e.Target] < levels[e.Source]+1 {
				t.Fatalf("edge %s->%s: level %d < %d+1", e.Source, e.Target, levels[e.Target], levels[e.Source])
			}
		}
	})
}

func TestSubtreesCoverReachableNodes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := genGraph(t)
		root := g.Nodes[0].ID
		subtrees := AssignSubtrees(g, root)
		seeds := Seeds(g, root)

		// Every node reachable from a seed (without passing the root) has
		// a subtree in [0, len(seeds)).
		children := g.Children()
		reach := map[string]bool{root: true}
		var stack []string
		for _, s := range seeds {
			if !reach[s] {
				reach[s] = true
				stack = append(stack, s)
			}
		}
		for len(stack) > 0 {
			c := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, ch := range children[c] {
				if !reach[ch] {
					reach[ch] = true
					stack = append(stack, ch)
				}
			}
		}
		for id := range reach {
			if id == root {
				if _, ok := subtrees[id]; ok {
					t.Fatalf("root %s was assigned a subtree", id)
				}
				continue
			}
			idx, ok := subtrees[id]
			if !ok || idx < 0 || idx >= len(seeds) {
				t.Fatalf("reachable node %s subtree = %d (ok=%v), seeds %d", id, idx, ok, len(seeds))
			}
		}
		if len(subtrees) != len(reach)-1 {
			t.Fatalf("assigned %d nodes, reachable %d", len(subtrees), len(reach)-1)
		}
	})
}
