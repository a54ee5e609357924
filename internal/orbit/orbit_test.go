package orbit

import (
	"math"
	"testing"

	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/mesh"
	"github.com/san-kum/pmsim/internal/particles"
	"gonum.org/v1/gonum/spatial/r3"
)

// radialWell writes phi = 0.5*k*|x-c|^2, whose gradient k*(x-c) points away
// from c.
func radialWell(t *testing.T, k float64, c r3.Vec) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New(mesh.Dims{X: 20, Y: 20, Z: 20}, r3.Vec{X: 20, Y: 20, Z: 20})
	if err != nil {
		t.Fatal(err)
	}
	for idx := range m.Potential {
		ix, iy, iz := m.Coords(idx)
		d := r3.Sub(m.CellCenter(ix, iy, iz), c)
		m.Potential[idx] = 0.5 * k * r3.Norm2(d)
	}
	return m
}

func TestCircularVelocity(t *testing.T) {
	c := r3.Vec{X: 10, Y: 10, Z: 10}
	m := radialWell(t, 2, c)
	// mirrored pair keeps the centroid at c
	s := particles.FromParticles([]dynamo.Particle{
		dynamo.NewParticle(r3.Vec{X: 14.5, Y: 10.5, Z: 10.5}, r3.Vec{X: 9}, 3),
		dynamo.NewParticle(r3.Vec{X: 5.5, Y: 9.5, Z: 9.5}, r3.Vec{}, 3),
	})

	st := Initialize(s, m, DefaultOptions())
	if st.Orbiting != 2 {
		t.Fatalf("expected both particles orbiting, got %+v", st)
	}

	for i := 0; i < s.Len(); i++ {
		radial := r3.Sub(s.Position(i), c)
		v := s.Velocity(i)
		if math.Abs(r3.Dot(v, radial)) > 1e-9 {
			t.Errorf("particle %d: velocity not tangential: %v", i, v)
		}
		if math.Abs(v.Z) > 1e-12 {
			t.Errorf("particle %d: expected orbit in the xy plane, got vz=%f", i, v.Z)
		}
		// F = -m*k*r_cell, v^2 = r*|Fr|/m
		grad := m.Gradient(s.Position(i))
		fr := r3.Dot(r3.Scale(-3, grad), r3.Unit(radial))
		want := math.Sqrt(r3.Norm(radial) * math.Abs(fr) / 3)
		if math.Abs(r3.Norm(v)-want) > 1e-9 {
			t.Errorf("particle %d: speed %f, want %f", i, r3.Norm(v), want)
		}
	}
}

func TestFallbackAxis(t *testing.T) {
	c := r3.Vec{X: 10, Y: 10, Z: 10}
	m := radialWell(t, 1, c)
	s := particles.FromParticles([]dynamo.Particle{
		dynamo.NewParticle(r3.Vec{X: 10, Y: 10, Z: 15}, r3.Vec{}, 1),
		dynamo.NewParticle(r3.Vec{X: 10, Y: 10, Z: 5}, r3.Vec{}, 1),
	})
	Initialize(s, m, DefaultOptions())
	for i := 0; i < s.Len(); i++ {
		v := s.Velocity(i)
		if r3.Norm(v) == 0 || math.IsNaN(v.Y) {
			t.Fatalf("particle %d on the z axis got %v", i, v)
		}
		if v.X != 0 || v.Z != 0 {
			t.Errorf("expected velocity along y from the x fallback, got %v", v)
		}
	}
}

func TestCenteredParticleAtRest(t *testing.T) {
	m := radialWell(t, 1, r3.Vec{X: 10, Y: 10, Z: 10})
	s := particles.FromParticles([]dynamo.Particle{
		dynamo.NewParticle(r3.Vec{X: 10, Y: 10, Z: 10}, r3.Vec{X: 5, Y: 5}, 1),
	})
	st := Initialize(s, m, DefaultOptions())
	if st.Centered != 1 || s.VX[0] != 0 || s.VY[0] != 0 {
		t.Errorf("expected centred particle at rest, got %+v v=%v", st, s.Velocity(0))
	}
}

func TestRepulsiveFieldGivesZeroVelocity(t *testing.T) {
	c := r3.Vec{X: 10, Y: 10, Z: 10}
	m := radialWell(t, -1, c)
	s := particles.FromParticles([]dynamo.Particle{
		dynamo.NewParticle(r3.Vec{X: 14, Y: 10, Z: 10}, r3.Vec{Y: 2}, 1),
		dynamo.NewParticle(r3.Vec{X: 6, Y: 10, Z: 10}, r3.Vec{Y: 2}, 1),
	})
	st := Initialize(s, m, DefaultOptions())
	if st.Repulsive != 2 {
		t.Fatalf("expected 2 repulsive, got %+v", st)
	}
	for i := 0; i < s.Len(); i++ {
		if s.Velocity(i) != (r3.Vec{}) {
			t.Errorf("particle %d: expected zero velocity, got %v", i, s.Velocity(i))
		}
	}
}

func TestTinyTotalMassUntouched(t *testing.T) {
	m := radialWell(t, 1, r3.Vec{X: 10, Y: 10, Z: 10})
	s := particles.FromParticles([]dynamo.Particle{
		dynamo.NewParticle(r3.Vec{X: 12, Y: 10, Z: 10}, r3.Vec{Y: 7}, 0),
	})
	Initialize(s, m, DefaultOptions())
	if s.VY[0] != 7 {
		t.Errorf("expected velocity untouched, got %f", s.VY[0])
	}
	Initialize(particles.New(0), m, DefaultOptions())
}
