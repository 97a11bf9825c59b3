package force

import "math/rand/v2"

// Target returns the desired coordinate and strength for a body.
type Target func(b Body) (coord, strength float64)

// Constant returns a Target that pulls every body to coord.
func Constant(coord, strength float64) Target {
	return func(Body) (float64, float64) { return coord, strength }
}

// PositionX pulls each body's x toward its target.
type PositionX struct {
	Target Target

	coords, strengths []float64
}

// Initialize implements Force.
func (f *PositionX) Initialize(bodies []Body, _ *rand.Rand) {
	f.coords, f.strengths = resolveTargets(bodies, f.Target)
}

// Apply implements Force.
func (f *PositionX) Apply(bodies []Body, alpha float64) {
	for i := range bodies {
		bodies[i].Vel.X += (f.coords[i] - bodies[i].Pos.X) * f.strengths[i] * alpha
	}
}

// PositionY pulls each body's y toward its target.
type PositionY struct {
	Target Target

	coords, strengths []float64
}

// Initialize implements Force.
func (f *PositionY) Initialize(bodies []Body, _ *rand.Rand) {
	f.coords, f.strengths = resolveTargets(bodies, f.Target)
}

// Apply implements Force.
func (f *PositionY) Apply(bodies []Body, alpha float64) {
	for i := range bodies {
		bodies[i].Vel.Y += (f.coords[i] - bodies[i].Pos.Y) * f.strengths[i] * alpha
	}
}

func resolveTargets(bodies []Body, target Target) ([]float64, []float64) {
	coords := make([]float64, len(bodies))
	strengths := make([]float64, len(bodies))
	for i, b := range bodies {
		if target == nil {
			continue
		}
		coords[i], strengths[i] = target(b)
	}
	return coords, strengths
}
