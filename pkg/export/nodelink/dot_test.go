package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/layout"
)

func stormGraph() graph.Graph {
	return graph.Graph{
		Nodes: []graph.Node{{ID: "Root"}, {ID: "Austin"}, {ID: "Boston"}, {ID: "Chicago"}},
		Edges: []graph.Edge{
			{Source: "Root", Target: "Austin", Label: "3 storm(s)", Weight: 3},
			{Source: "Root", Target: "Boston", Label: "1 storm(s)", Weight: 1},
			{Source: "Austin", Target: "Chicago"},
		},
	}
}

func TestToDOT(t *testing.T) {
	g := stormGraph()
	dot := ToDOT(g, layout.Compute(g, layout.Options{}), Options{Highlight: "Boston"})

	for _, want := range []string{
		"digraph G {",
		`"Root" -> "Austin" [label="3 storm(s)"];`,
		`"Austin" -> "Chicago";`,
		`"Boston" [fillcolor="#d62728"`,
		`"Austin" [fillcolor="#008000"`,
		`{ rank=same; "Austin"; "Boston"; }`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	g := stormGraph()
	dot := ToDOT(g, layout.Compute(g, layout.Options{}), Options{Detailed: true})
	if !strings.Contains(dot, `xlabel="Chicago\nlevel: 2\nsubtree: 0"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `xlabel="Root\nlevel: 0\nsubtree: -"`) {
		t.Errorf("root label missing:\n%s", dot)
	}
}

func TestToDOTQuotesIDs(t *testing.T) {
	g := graph.Graph{Nodes: []graph.Node{{ID: `St. "Paul"`}}}
	dot := ToDOT(g, layout.Compute(g, layout.Options{}), Options{})
	if !strings.Contains(dot, `"St. \"Paul\""`) {
		t.Errorf("id not quoted:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	g := stormGraph()
	dot := ToDOT(g, layout.Compute(g, layout.Options{}), Options{})
	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatal(err)
	}
	s := string(svg)
	if !strings.HasPrefix(strings.TrimSpace(s[strings.Index(s, "<svg"):]), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("root element not normalized:\n%.300s", s)
	}
	if !strings.Contains(s, "3 storm(s)") {
		t.Error("edge label missing from SVG")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox =\n%s\nwant\n%s", got, want)
	}
	if out := normalizeViewBox([]byte("<svg/>")); string(out) != "<svg/>" {
		t.Errorf("no viewBox should pass through, got %s", out)
	}
}
