package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stormgraph/pkg/graph"
	"github.com/matzehuels/stormgraph/pkg/layout"
)

// Default colours, matching the interactive surface.
const (
	DefaultFillColor      = "#008000"
	DefaultHighlightColor = "#d62728"
	DefaultEdgeColor      = "#999999"
)

// Options configures DOT generation.
type Options struct {
	// Detailed adds level and subtree to node labels.
	Detailed bool
	// Highlight names the node drawn with HighlightColor.
	Highlight string

	FillColor      string
	HighlightColor string
	EdgeColor      string
}

func (o *Options) setDefaults() {
	if o.FillColor == "" {
		o.FillColor = DefaultFillColor
	}
	if o.HighlightColor == "" {
		o.HighlightColor = DefaultHighlightColor
	}
	if o.EdgeColor == "" {
		o.EdgeColor = DefaultEdgeColor
	}
}

// ToDOT converts g to Graphviz DOT. Nodes on the same layout level are
// placed on the same rank.
func ToDOT(g graph.Graph, lay layout.Result, opts Options) string {
	opts.setDefaults()
	byID := make(map[string]layout.Node, len(lay.Nodes))
	for _, n := range lay.Nodes {
		byID[n.ID] = n
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, width=0.25, fixedsize=true, fontsize=12, label=\"\"];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=1.5, arrowsize=0.6, fontsize=10];\n", opts.EdgeColor)
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fill := opts.FillColor
		if opts.Highlight != "" && n.ID == opts.Highlight {
			fill = opts.HighlightColor
		}
		fmt.Fprintf(&buf, "  %q [fillcolor=%q, xlabel=%q, tooltip=%q];\n",
			n.ID, fill, fmtLabel(n.ID, byID[n.ID], opts.Detailed), n.ID)
	}

	buf.WriteString("\n")
	for _, level := range lay.Levels() {
		if len(level) < 2 {
			continue
		}
		quoted := make([]string, len(level))
		for i, id := range level {
			quoted[i] = strconv.Quote(id)
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(quoted, "; "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if e.Label == "" {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.Source, e.Target, e.Label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(id string, n layout.Node, detailed bool) string {
	if !detailed {
		return id
	}
	subtree := "-"
	if n.HasSubtree() {
		subtree = strconv.Itoa(n.Subtree)
	}
	return fmt.Sprintf("%s\nlevel: %d\nsubtree: %s", id, n.Level, subtree)
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing scales to its
// container: Graphviz emits point-based sizes and an offset viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
