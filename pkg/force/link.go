package force

import (
	"math"
	"math/rand/v2"
)

// LinkSpec is one spring between two bodies, by id.
type LinkSpec struct {
	Source, Target string
	Label          string
}

// Link pulls linked bodies toward a target separation.
//
// Strength defaults to 1/min(count(source), count(target)) where count is
// the number of links touching a body, so hubs are not dragged around by
// every neighbour. Bias splits each correction between the two ends in
// proportion to their counts.
type Link struct {
	Links      []LinkSpec
	Distance   float64                // Target separation
	DistanceFn func(LinkSpec) float64 // Overrides Distance when set
	Iterations int                    // Relaxation passes per step, default 1

	src, dst  []int
	distances []float64
	strengths []float64
	bias      []float64
	rnd       *rand.Rand
}

// Initialize implements Force. Links whose endpoints are not bodies are
// dropped.
func (f *Link) Initialize(bodies []Body, rnd *rand.Rand) {
	f.rnd = rnd
	if f.Iterations <= 0 {
		f.Iterations = 1
	}
	index := make(map[string]int, len(bodies))
	for i, b := range bodies {
		index[b.ID] = i
	}

	f.src, f.dst = f.src[:0], f.dst[:0]
	f.distances, f.strengths, f.bias = f.distances[:0], f.strengths[:0], f.bias[:0]
	count := make([]int, len(bodies))
	var kept []LinkSpec
	for _, l := range f.Links {
		s, ok1 := index[l.Source]
		t, ok2 := index[l.Target]
		if !ok1 || !ok2 {
			continue
		}
		f.src = append(f.src, s)
		f.dst = append(f.dst, t)
		count[s]++
		count[t]++
		kept = append(kept, l)
	}
	for i, l := range kept {
		s, t := f.src[i], f.dst[i]
		f.bias = append(f.bias, float64(count[s])/float64(count[s]+count[t]))
		f.strengths = append(f.strengths, 1/float64(min(count[s], count[t])))
		d := f.Distance
		if f.DistanceFn != nil {
			d = f.DistanceFn(l)
		}
		f.distances = append(f.distances, d)
	}
}

// Apply implements Force.
func (f *Link) Apply(bodies []Body, alpha float64) {
	for range f.Iterations {
		for i := range f.src {
			source, target := &bodies[f.src[i]], &bodies[f.dst[i]]
			x := target.Pos.X + target.Vel.X - source.Pos.X - source.Vel.X
			if x == 0 {
				x = jiggle(f.rnd)
			}
			y := target.Pos.Y + target.Vel.Y - source.Pos.Y - source.Vel.Y
			if y == 0 {
				y = jiggle(f.rnd)
			}
			l := math.Sqrt(x*x + y*y)
			l = (l - f.distances[i]) / l * alpha * f.strengths[i]
			x *= l
			y *= l

			b := f.bias[i]
			target.Vel.X -= x * b
			target.Vel.Y -= y * b
			source.Vel.X += x * (1 - b)
			source.Vel.Y += y * (1 - b)
		}
	}
}
