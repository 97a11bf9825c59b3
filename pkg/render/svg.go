package render

import (
	"fmt"
	"html"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

const (
	arrowMarkerID = "arrow"
	edgeWidth     = 1.5
	nodeFontSize  = 12
	edgeFontSize  = 10
)

// WriteSVG draws the current scene to w as a standalone SVG document.
//
// Every node is a group carrying a data-node-id attribute, so a client
// can route clicks on the circle or its label back to the node.
func (s *Surface) WriteSVG(w io.Writer) error {
	sc := s.Scene()
	return writeSVG(w, sc, s.opts)
}

func writeSVG(w io.Writer, sc Scene, opts Options) error {
	width, height := px(sc.Width), px(sc.Height)

	canvas := svg.New(w)
	canvas.Start(width, height, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height))

	canvas.Def()
	canvas.Marker(arrowMarkerID, 20, 0, 6, 6, `viewBox="0 -5 10 10"`, `orient="auto"`)
	canvas.Path("M0,-5L10,0L0,5", "fill:"+opts.EdgeColor)
	canvas.MarkerEnd()
	canvas.DefEnd()

	canvas.Gtransform(sc.Transform.String())

	canvas.Group(`class="edges"`)
	for _, e := range sc.Edges {
		canvas.Line(px(e.From.X), px(e.From.Y), px(e.To.X), px(e.To.Y),
			fmt.Sprintf("stroke:%s;stroke-width:%g;marker-end:url(#%s)", opts.EdgeColor, edgeWidth, arrowMarkerID))
	}
	for _, e := range sc.Edges {
		if e.Label == "" {
			continue
		}
		canvas.Text(px(e.LabelPos.X), px(e.LabelPos.Y), e.Label,
			fmt.Sprintf("font-size:%dpx;text-anchor:middle;fill:%s", edgeFontSize, DefaultTextColor))
	}
	canvas.Gend()

	canvas.Group(`class="nodes"`)
	for _, n := range sc.Nodes {
		canvas.Group(`class="node"`, attr("data-node-id", n.ID))
		canvas.Title(n.ID)
		canvas.Circle(px(n.Pos.X), px(n.Pos.Y), px(n.Radius), "fill:"+n.Fill)
		canvas.Text(px(n.Pos.X+opts.LabelDX), px(n.Pos.Y), n.Label,
			fmt.Sprintf("font-size:%dpx;dominant-baseline:middle;cursor:pointer;fill:%s", nodeFontSize, DefaultTextColor),
			attr("data-node-id", n.ID))
		canvas.Gend()
	}
	canvas.Gend()

	canvas.Gend()
	canvas.End()
	return nil
}

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

func px(v float64) int {
	return int(math.Round(v))
}
