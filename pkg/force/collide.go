package force

import (
	"math"
	"math/rand/v2"
)

// Collide treats bodies as circles and pushes overlapping pairs apart.
// It acts on predicted positions (pos + vel) and does not scale with alpha.
type Collide struct {
	Radius     func(b Body) float64
	Strength   float64 // Default 1
	Iterations int     // Default 1

	radii []float64
	rnd   *rand.Rand
}

// Initialize implements Force.
func (f *Collide) Initialize(bodies []Body, rnd *rand.Rand) {
	f.rnd = rnd
	if f.Strength == 0 {
		f.Strength = 1
	}
	if f.Iterations <= 0 {
		f.Iterations = 1
	}
	f.radii = make([]float64, len(bodies))
	for i, b := range bodies {
		if f.Radius != nil {
			f.radii[i] = f.Radius(b)
		}
	}
}

// Apply implements Force.
func (f *Collide) Apply(bodies []Body, _ float64) {
	for range f.Iterations {
		for i := range bodies {
			bi := &bodies[i]
			ri := f.radii[i]
			ri2 := ri * ri
			xi := bi.Pos.X + bi.Vel.X
			yi := bi.Pos.Y + bi.Vel.Y
			for j := i + 1; j < len(bodies); j++ {
				bj := &bodies[j]
				rj := f.radii[j]
				r := ri + rj
				x := xi - bj.Pos.X - bj.Vel.X
				y := yi - bj.Pos.Y - bj.Vel.Y
				l := x*x + y*y
				if l >= r*r {
					continue
				}
				if x == 0 {
					x = jiggle(f.rnd)
					l += x * x
				}
				if y == 0 {
					y = jiggle(f.rnd)
					l += y * y
				}
				l = math.Sqrt(l)
				l = (r - l) / l * f.Strength
				x *= l
				y *= l
				rj2 := rj * rj
				share := rj2 / (ri2 + rj2)
				bi.Vel.X += x * share
				bi.Vel.Y += y * share
				bj.Vel.X -= x * (1 - share)
				bj.Vel.Y -= y * (1 - share)
			}
		}
	}
}
