package force

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
)

// Default kinetics, matching d3-force.
const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
	DefaultMaxSteps      = 300
	DefaultSeed          = uint64(42)
	DefaultTickInterval  = 16 * time.Millisecond

	initialRadius = 10.0
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Options controls cooling and integration.
type Options struct {
	Width, Height float64 // Viewport; initial positions spiral around its center

	AlphaMin      float64 // Stop once alpha falls below this
	AlphaTarget   float64 // Alpha decays toward this value
	AlphaDecay    float64 // Zero means 1 - AlphaMin^(1/MaxSteps)
	VelocityDecay float64 // Fraction of velocity removed each step
	MaxSteps      int     // Hard step budget
	Seed          uint64  // Jiggle seed
}

// SetDefaults fills zero fields with the package defaults.
func (o *Options) SetDefaults() {
	if o.AlphaMin == 0 {
		o.AlphaMin = DefaultAlphaMin
	}
	if o.VelocityDecay == 0 {
		o.VelocityDecay = DefaultVelocityDecay
	}
	if o.MaxSteps == 0 {
		o.MaxSteps = DefaultMaxSteps
	}
	if o.AlphaDecay == 0 {
		o.AlphaDecay = 1 - math.Pow(o.AlphaMin, 1/float64(o.MaxSteps))
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
}

// Body is the simulated state of one node.
type Body struct {
	ID  string
	Pos r2.Vec
	Vel r2.Vec
}

// Force adds velocity (or, for Center, displacement) to bodies.
type Force interface {
	// Initialize binds the force to the simulation's bodies. It is called
	// when the force is added.
	Initialize(bodies []Body, rnd *rand.Rand)
	// Apply runs one step at the given alpha.
	Apply(bodies []Body, alpha float64)
}

type namedForce struct {
	name  string
	force Force
}

// Snapshot is a copy of the simulation state after one step.
type Snapshot struct {
	Generation string   `json:"generation"`
	Step       int      `json:"step"`
	Alpha      float64  `json:"alpha"`
	Positions  []r2.Vec `json:"positions"` // Same order as the simulation's bodies
	Done       bool     `json:"done"`
}

// Simulation is a d3-style force simulation.
type Simulation struct {
	opts       Options
	bodies     []Body
	index      map[string]int
	forces     []namedForce
	alpha      float64
	step       int
	generation string
	rnd        *rand.Rand
}

// New creates a simulation with one body per id, placed on a phyllotaxis
// spiral around the viewport center.
func New(ids []string, opts Options) *Simulation {
	opts.SetDefaults()
	s := &Simulation{
		opts:       opts,
		bodies:     make([]Body, len(ids)),
		index:      make(map[string]int, len(ids)),
		alpha:      1,
		generation: uuid.NewString(),
		rnd:        rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
	}
	cx, cy := opts.Width/2, opts.Height/2
	for i, id := range ids {
		radius := initialRadius * math.Sqrt(0.5+float64(i))
		angle := float64(i) * initialAngle
		s.bodies[i] = Body{
			ID:  id,
			Pos: r2.Vec{X: cx + radius*math.Cos(angle), Y: cy + radius*math.Sin(angle)},
		}
		s.index[id] = i
	}
	return s
}

// Generation identifies this simulation. Ticks from a replaced simulation
// carry a different generation and can be discarded by consumers.
func (s *Simulation) Generation() string { return s.generation }

// Alpha returns the current alpha.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Steps returns the number of steps taken.
func (s *Simulation) Steps() int { return s.step }

// Len returns the number of bodies.
func (s *Simulation) Len() int { return len(s.bodies) }

// Index returns the body index of id.
func (s *Simulation) Index(id string) (int, bool) {
	i, ok := s.index[id]
	return i, ok
}

// Bodies returns a copy of the current bodies.
func (s *Simulation) Bodies() []Body {
	out := make([]Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// AddForce registers f under name, replacing any force with the same name.
func (s *Simulation) AddForce(name string, f Force) *Simulation {
	f.Initialize(s.bodies, s.rnd)
	for i, nf := range s.forces {
		if nf.name == name {
			s.forces[i].force = f
			return s
		}
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
	return s
}

// Force returns the force registered under name.
func (s *Simulation) Force(name string) (Force, bool) {
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force, true
		}
	}
	return nil, false
}

// Done reports whether the simulation has converged or used its budget.
// A simulation without bodies is done immediately.
func (s *Simulation) Done() bool {
	return len(s.bodies) == 0 || s.alpha < s.opts.AlphaMin || s.step >= s.opts.MaxSteps
}

// Step advances the simulation by one tick and returns its snapshot.
// Calling Step on a done simulation returns the current state unchanged.
func (s *Simulation) Step() Snapshot {
	if s.Done() {
		return s.Snapshot()
	}
	s.alpha += (s.opts.AlphaTarget - s.alpha) * s.opts.AlphaDecay
	for _, nf := range s.forces {
		nf.force.Apply(s.bodies, s.alpha)
	}
	keep := 1 - s.opts.VelocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		b.Vel = r2.Scale(keep, b.Vel)
		b.Pos = r2.Add(b.Pos, b.Vel)
	}
	s.step++
	return s.Snapshot()
}

// Snapshot copies the current positions.
func (s *Simulation) Snapshot() Snapshot {
	pos := make([]r2.Vec, len(s.bodies))
	for i, b := range s.bodies {
		pos[i] = b.Pos
	}
	return Snapshot{
		Generation: s.generation,
		Step:       s.step,
		Alpha:      s.alpha,
		Positions:  pos,
		Done:       s.Done(),
	}
}

// Settle steps until done without pacing, calling onTick (if non-nil)
// after every step. It returns the final snapshot.
func (s *Simulation) Settle(onTick func(Snapshot)) Snapshot {
	for !s.Done() {
		snap := s.Step()
		if onTick != nil {
			onTick(snap)
		}
	}
	return s.Snapshot()
}

// Run steps once per interval until done or ctx is cancelled, calling
// onTick after every step on the calling goroutine. It returns ctx.Err()
// when cancelled and nil once the simulation has converged.
func (s *Simulation) Run(ctx context.Context, interval time.Duration, onTick func(Snapshot)) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	if s.Done() {
		if onTick != nil {
			onTick(s.Snapshot())
		}
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := ctx.Err(); err != nil {
				return err
			}
			snap := s.Step()
			if onTick != nil {
				onTick(snap)
			}
			if snap.Done {
				return nil
			}
		}
	}
}

// jiggle returns a tiny random offset used to separate coincident bodies.
func jiggle(rnd *rand.Rand) float64 {
	return (rnd.Float64() - 0.5) * 1e-6
}
