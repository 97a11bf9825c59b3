package force

import "math/rand/v2"

// Center translates all bodies so their mean position moves onto (X, Y).
// It changes positions directly rather than velocities.
type Center struct {
	X, Y     float64
	Strength float64 // Default 1
}

// Initialize implements Force.
func (f *Center) Initialize(_ []Body, _ *rand.Rand) {
	if f.Strength == 0 {
		f.Strength = 1
	}
}

// Apply implements Force.
func (f *Center) Apply(bodies []Body, _ float64) {
	if len(bodies) == 0 {
		return
	}
	var sx, sy float64
	for _, b := range bodies {
		sx += b.Pos.X
		sy += b.Pos.Y
	}
	n := float64(len(bodies))
	dx := (sx/n - f.X) * f.Strength
	dy := (sy/n - f.Y) * f.Strength
	for i := range bodies {
		bodies[i].Pos.X -= dx
		bodies[i].Pos.Y -= dy
	}
}
