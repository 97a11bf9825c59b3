package force

import (
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func pair(a, b r2.Vec) []Body {
	return []Body{{ID: "a", Pos: a}, {ID: "b", Pos: b}}
}

func testRand() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

func TestManyBodyRepels(t *testing.T) {
	bodies := pair(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 10, Y: 0})
	f := &ManyBody{Strength: -30}
	f.Initialize(bodies, testRand())
	f.Apply(bodies, 1)

	if bodies[0].Vel.X >= 0 || bodies[1].Vel.X <= 0 {
		t.Errorf("velocities = %v, %v; want bodies pushed apart", bodies[0].Vel, bodies[1].Vel)
	}
	if math.Abs(bodies[0].Vel.X+bodies[1].Vel.X) > 1e-9 {
		t.Errorf("repulsion not symmetric: %v vs %v", bodies[0].Vel.X, bodies[1].Vel.X)
	}
}

func TestLinkPullsTowardDistance(t *testing.T) {
	tests := []struct {
		name     string
		gap      float64
		distance float64
		closer   bool
	}{
		{"stretched", 300, 150, true},
		{"compressed", 50, 150, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodies := pair(r2.Vec{}, r2.Vec{X: tt.gap})
			f := &Link{Links: []LinkSpec{{Source: "a", Target: "b"}}, Distance: tt.distance}
			f.Initialize(bodies, testRand())
			f.Apply(bodies, 1)

			next := (bodies[1].Pos.X + bodies[1].Vel.X) - (bodies[0].Pos.X + bodies[0].Vel.X)
			if closer := next < tt.gap; closer != tt.closer {
				t.Errorf("gap %v -> %v, closer = %v, want %v", tt.gap, next, closer, tt.closer)
			}
		})
	}
}

func TestLinkIgnoresUnknownEndpoints(t *testing.T) {
	bodies := pair(r2.Vec{}, r2.Vec{X: 10})
	f := &Link{Links: []LinkSpec{{Source: "a", Target: "zzz"}}, Distance: 5}
	f.Initialize(bodies, testRand())
	f.Apply(bodies, 1)
	if bodies[0].Vel != (r2.Vec{}) {
		t.Errorf("velocity changed by a dangling link: %v", bodies[0].Vel)
	}
}

func TestLinkDistanceByLabel(t *testing.T) {
	p := Params{LinkDistance: 40, LinkCharWidth: 20}
	p.SetDefaults()
	links := []LinkSpec{
		{Source: "a", Target: "b", Label: "x"},
		{Source: "c", Target: "d", Label: "xxxxxxxxxx"},
	}

	tests := []struct {
		name      string
		byLabel   bool
		wantShort float64
		wantLong  float64
	}{
		{"fixed", false, 40, 40},
		{"by label", true, 60, 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := p
			p.LinkDistanceByLabel = tt.byLabel
			if got := p.LinkLength(links[0]); got != tt.wantShort {
				t.Errorf("LinkLength(short) = %v, want %v", got, tt.wantShort)
			}
			if got := p.LinkLength(links[1]); got != tt.wantLong {
				t.Errorf("LinkLength(long) = %v, want %v", got, tt.wantLong)
			}
		})
	}

	p.LinkDistanceByLabel = true
	s := New([]string{"a", "b", "c", "d"}, Options{Width: 800, Height: 600})
	s.AddForce(ForceLink, &Link{Links: links, Distance: p.LinkDistance, DistanceFn: p.LinkLength})
	pos := s.Settle(nil).Positions

	short := r2.Norm(r2.Sub(pos[1], pos[0]))
	long := r2.Norm(r2.Sub(pos[3], pos[2]))
	if long < short+100 {
		t.Errorf("settled gaps short=%.1f long=%.1f, want the longer label further apart", short, long)
	}
}

func TestLinkStrengthAndBias(t *testing.T) {
	bodies := []Body{{ID: "hub"}, {ID: "a"}, {ID: "b"}}
	f := &Link{Links: []LinkSpec{{Source: "hub", Target: "a"}, {Source: "hub", Target: "b"}}, Distance: 10}
	f.Initialize(bodies, testRand())

	// hub has count 2, leaves count 1.
	for i := range f.src {
		if f.strengths[i] != 1 {
			t.Errorf("strength[%d] = %v, want 1", i, f.strengths[i])
		}
		if want := 2.0 / 3.0; f.bias[i] != want {
			t.Errorf("bias[%d] = %v, want %v", i, f.bias[i], want)
		}
	}
}

func TestCollideSeparatesOverlap(t *testing.T) {
	bodies := pair(r2.Vec{}, r2.Vec{X: 5})
	f := &Collide{Radius: func(Body) float64 { return 10 }}
	f.Initialize(bodies, testRand())
	f.Apply(bodies, 0)

	next := (bodies[1].Pos.X + bodies[1].Vel.X) - (bodies[0].Pos.X + bodies[0].Vel.X)
	if next <= 5 {
		t.Errorf("gap after collide = %v, want > 5", next)
	}
}

func TestCollideIgnoresDistantBodies(t *testing.T) {
	bodies := pair(r2.Vec{}, r2.Vec{X: 50})
	f := &Collide{Radius: func(Body) float64 { return 10 }}
	f.Initialize(bodies, testRand())
	f.Apply(bodies, 0)
	if bodies[0].Vel != (r2.Vec{}) || bodies[1].Vel != (r2.Vec{}) {
		t.Error("distant bodies should not be affected")
	}
}

func TestCollideCoincidentBodies(t *testing.T) {
	bodies := pair(r2.Vec{X: 3, Y: 3}, r2.Vec{X: 3, Y: 3})
	f := &Collide{Radius: func(Body) float64 { return 10 }}
	f.Initialize(bodies, testRand())
	f.Apply(bodies, 0)
	if bodies[0].Vel == (r2.Vec{}) {
		t.Error("coincident bodies should be jiggled apart")
	}
}

func TestPositionForces(t *testing.T) {
	bodies := pair(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 100, Y: 100})
	fx := &PositionX{Target: Constant(50, 0.5)}
	fy := &PositionY{Target: Constant(50, 1)}
	fx.Initialize(bodies, nil)
	fy.Initialize(bodies, nil)
	fx.Apply(bodies, 1)
	fy.Apply(bodies, 0.5)

	if bodies[0].Vel.X != 25 || bodies[1].Vel.X != -25 {
		t.Errorf("x velocities = %v, %v; want 25, -25", bodies[0].Vel.X, bodies[1].Vel.X)
	}
	if bodies[0].Vel.Y != 25 || bodies[1].Vel.Y != -25 {
		t.Errorf("y velocities = %v, %v; want 25, -25", bodies[0].Vel.Y, bodies[1].Vel.Y)
	}
}

func TestCenterTranslates(t *testing.T) {
	bodies := pair(r2.Vec{X: 0, Y: 0}, r2.Vec{X: 10, Y: 20})
	f := &Center{X: 100, Y: 100}
	f.Initialize(bodies, nil)
	f.Apply(bodies, 1)

	mean := r2.Scale(0.5, r2.Add(bodies[0].Pos, bodies[1].Pos))
	if mean != (r2.Vec{X: 100, Y: 100}) {
		t.Errorf("mean = %v, want (100,100)", mean)
	}
	if got := r2.Sub(bodies[1].Pos, bodies[0].Pos); got != (r2.Vec{X: 10, Y: 20}) {
		t.Errorf("relative offset changed: %v", got)
	}
}

func TestAddForceReplaces(t *testing.T) {
	s := New([]string{"a"}, Options{})
	first := &Center{}
	second := &Center{X: 5}
	s.AddForce("c", first).AddForce("c", second)
	got, ok := s.Force("c")
	if !ok || got != Force(second) {
		t.Errorf("Force(c) = %v, want replacement", got)
	}
	if len(s.forces) != 1 {
		t.Errorf("len(forces) = %d, want 1", len(s.forces))
	}
}
