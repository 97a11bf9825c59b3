package render

import (
	"io"
	"math"

	"git.sr.ht/~sbinet/gg"
)

// WritePNG rasterises the current scene to w.
func (s *Surface) WritePNG(w io.Writer) error {
	sc := s.Scene()
	return writePNG(w, sc, s.opts)
}

func writePNG(w io.Writer, sc Scene, opts Options) error {
	dc := gg.NewContext(px(sc.Width), px(sc.Height))
	dc.SetHexColor("#ffffff")
	dc.Clear()

	t := sc.Transform
	dc.Translate(t.X, t.Y)
	dc.Scale(t.K, t.K)

	dc.SetHexColor(opts.EdgeColor)
	dc.SetLineWidth(edgeWidth)
	for _, e := range sc.Edges {
		dc.DrawLine(e.From.X, e.From.Y, e.To.X, e.To.Y)
		dc.Stroke()
		drawArrowHead(dc, e.From.X, e.From.Y, e.To.X, e.To.Y, opts.NodeRadius)
	}

	dc.SetHexColor(DefaultTextColor)
	for _, e := range sc.Edges {
		if e.Label != "" {
			dc.DrawStringAnchored(e.Label, e.LabelPos.X, e.LabelPos.Y, 0.5, 0.5)
		}
	}

	for _, n := range sc.Nodes {
		dc.SetHexColor(n.Fill)
		dc.DrawCircle(n.Pos.X, n.Pos.Y, n.Radius)
		dc.Fill()
		dc.SetHexColor(DefaultTextColor)
		dc.DrawStringAnchored(n.Label, n.Pos.X+opts.LabelDX, n.Pos.Y, 0, 0.5)
	}

	return dc.EncodePNG(w)
}

// drawArrowHead fills a triangle whose tip touches the target circle.
func drawArrowHead(dc *gg.Context, x1, y1, x2, y2, radius float64) {
	dx, dy := x2-x1, y2-y1
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return
	}
	dx /= dist
	dy /= dist

	const length, width = 8.0, 4.0
	ax, ay := x2-dx*radius, y2-dy*radius
	nx, ny := -dy, dx

	dc.MoveTo(ax, ay)
	dc.LineTo(ax-dx*length+nx*width, ay-dy*length+ny*width)
	dc.LineTo(ax-dx*length-nx*width, ay-dy*length-ny*width)
	dc.ClosePath()
	dc.Fill()
}
