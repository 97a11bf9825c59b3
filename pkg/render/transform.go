package render

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Transform is a uniform scale followed by a translation, applied to the
// root drawing group: screen = world*K + (X, Y).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the transform that leaves coordinates unchanged.
var Identity = Transform{K: 1}

// Apply maps a world point to screen space.
func (t Transform) Apply(p r2.Vec) r2.Vec {
	return r2.Add(r2.Scale(t.K, p), r2.Vec{X: t.X, Y: t.Y})
}

// Invert maps a screen point to world space.
func (t Transform) Invert(p r2.Vec) r2.Vec {
	return r2.Scale(1/t.K, r2.Sub(p, r2.Vec{X: t.X, Y: t.Y}))
}

// Zoom multiplies the scale by factor, keeping the screen point (cx, cy)
// fixed. The resulting scale is clamped to [minK, maxK].
func (t Transform) Zoom(factor, cx, cy, minK, maxK float64) Transform {
	anchor := r2.Vec{X: cx, Y: cy}
	world := t.Invert(anchor)
	k := clamp(t.K*factor, minK, maxK)
	moved := r2.Sub(anchor, r2.Scale(k, world))
	return Transform{K: k, X: moved.X, Y: moved.Y}
}

// Pan translates by (dx, dy) screen pixels.
func (t Transform) Pan(dx, dy float64) Transform {
	return Transform{K: t.K, X: t.X + dx, Y: t.Y + dy}
}

// Clamp returns t with its scale limited to [minK, maxK].
func (t Transform) Clamp(minK, maxK float64) Transform {
	t.K = clamp(t.K, minK, maxK)
	return t
}

// Finite reports whether every component of t is a finite number.
func (t Transform) Finite() bool {
	for _, v := range [...]float64{t.K, t.X, t.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// String formats t as an SVG transform attribute value.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

func clamp(v, lo, hi float64) float64 {
	return max(lo, min(hi, v))
}
