// Package nodelink exports storm graphs as Graphviz node-link diagrams.
//
// # Overview
//
// The interactive surface in package render animates a force layout. This
// package produces a static alternative: Graphviz DOT source in which
// cities of the same hierarchy level share a rank, edges carry their storm
// counts, and the last selected city is filled with the highlight colour.
//
// # Usage
//
//	lay := layout.Compute(g, layout.Options{})
//	dot := nodelink.ToDOT(g, lay, nodelink.Options{Highlight: "AUSTIN"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Detailed: node labels include level and subtree
//   - Highlight: city drawn with HighlightColor
//
// # Dependencies
//
// [RenderSVG] uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process; no external binaries are needed.
package nodelink
