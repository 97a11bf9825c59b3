package source

import (
	"context"

	"github.com/matzehuels/stormgraph/pkg/graph"
)

// Default query settings.
const (
	DefaultLimit    = 100
	DefaultTable    = "StormEvents"
	DefaultDatabase = "Samples"
	DefaultCluster  = "https://help.kusto.windows.net"
)

// DefaultQuery is the Kusto query behind the storm graph.
const DefaultQuery = "StormEvents | where BeginLocation <> EndLocation | summarize count() by BeginLocation, EndLocation | take 100"

// Source produces a storm graph.
type Source interface {
	// Name identifies the backend in logs, hooks and cache keys.
	Name() string
	// Fetch loads the graph. It returns an error instead of a partial graph.
	Fetch(ctx context.Context) (graph.Graph, error)
}

// Row is one summarized storm path: Count storms began in Begin and
// ended in End.
type Row struct {
	Begin string `json:"begin" bson:"begin"`
	End   string `json:"end" bson:"end"`
	Count int    `json:"count" bson:"count"`
}

// BuildGraph converts rows into a graph. Nodes appear in first-seen order
// (begin before end within a row), every row becomes one edge labelled
// with its storm count, and rows with an empty location are skipped.
func BuildGraph(rows []Row) graph.Graph {
	g := graph.Graph{
		Nodes: []graph.Node{},
		Edges: make([]graph.Edge, 0, len(rows)),
	}
	seen := make(map[string]bool)
	addNode := func(id string) {
		if !seen[id] {
			seen[id] = true
			g.Nodes = append(g.Nodes, graph.Node{ID: id})
		}
	}
	for _, r := range rows {
		if r.Begin == "" || r.End == "" {
			continue
		}
		addNode(r.Begin)
		addNode(r.End)
		g.Edges = append(g.Edges, graph.Edge{
			Source: r.Begin,
			Target: r.End,
			Label:  graph.StormLabel(r.Count),
			Weight: r.Count,
		})
	}
	return g
}

// limitOrDefault returns n, or DefaultLimit when n is not positive.
func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return n
}
