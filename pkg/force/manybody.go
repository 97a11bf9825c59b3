package force

import (
	"math"
	"math/rand/v2"
)

// ManyBody applies a charge between every pair of bodies. Negative
// strength repels. The sum is exact (O(n^2)); graphs here are small.
type ManyBody struct {
	Strength    float64
	DistanceMin float64 // Default 1
	DistanceMax float64 // Zero means unbounded

	rnd *rand.Rand
}

// Initialize implements Force.
func (f *ManyBody) Initialize(_ []Body, rnd *rand.Rand) {
	f.rnd = rnd
	if f.DistanceMin <= 0 {
		f.DistanceMin = 1
	}
}

// Apply implements Force.
func (f *ManyBody) Apply(bodies []Body, alpha float64) {
	minSq := f.DistanceMin * f.DistanceMin
	maxSq := f.DistanceMax * f.DistanceMax
	for i := range bodies {
		bi := &bodies[i]
		for j := range bodies {
			if i == j {
				continue
			}
			bj := &bodies[j]
			x := bj.Pos.X - bi.Pos.X
			y := bj.Pos.Y - bi.Pos.Y
			if x == 0 {
				x = jiggle(f.rnd)
			}
			if y == 0 {
				y = jiggle(f.rnd)
			}
			l := x*x + y*y
			if maxSq > 0 && l >= maxSq {
				continue
			}
			if l < minSq {
				l = math.Sqrt(minSq * l)
			}
			bi.Vel.X += x * f.Strength * alpha / l
			bi.Vel.Y += y * f.Strength * alpha / l
		}
	}
}
