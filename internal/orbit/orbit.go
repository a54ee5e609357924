// Package orbit assigns tangential velocities that put particles on
// approximately circular orbits around the population's center of mass.
package orbit

import (
	"math"

	"github.com/san-kum/pmsim/internal/mesh"
	"github.com/san-kum/pmsim/internal/particles"
	"gonum.org/v1/gonum/spatial/r3"
)

// Options tune the degenerate-case handling. The zero value is not useful;
// start from DefaultOptions.
type Options struct {
	// Axis is crossed with the radius vector to get the orbital direction.
	Axis r3.Vec
	// Fallback replaces Axis when the radius is (nearly) parallel to it.
	Fallback r3.Vec
	// MinRadius is the distance from the centroid below which a particle
	// gets zero velocity.
	MinRadius float64
	// MinTotalMass is the total mass below which nothing is changed.
	MinTotalMass float64
}

func DefaultOptions() Options {
	return Options{
		Axis:         r3.Vec{Z: 1},
		Fallback:     r3.Vec{X: 1},
		MinRadius:    1e-8,
		MinTotalMass: 1e-12,
	}
}

// Stats counts how particles were classified by Initialize.
type Stats struct {
	Orbiting  int
	Centered  int
	Repulsive int
}

// Initialize overwrites every particle's velocity from the current potential
// in m. Positions and masses are not touched. The potential must already be
// solved for the current population.
func Initialize(s *particles.Store, m *mesh.Mesh, opts Options) Stats {
	var st Stats
	if s.Len() == 0 {
		return st
	}
	center, total := s.CenterOfMass()
	if total < opts.MinTotalMass {
		return st
	}

	for i := 0; i < s.Len(); i++ {
		pos := s.Position(i)
		radial := r3.Sub(pos, center)
		r := r3.Norm(radial)
		if r < opts.MinRadius {
			s.VX[i], s.VY[i], s.VZ[i] = 0, 0, 0
			st.Centered++
			continue
		}

		mass := s.M[i]
		force := r3.Scale(-mass, m.Gradient(pos))
		fr := r3.Dot(force, r3.Scale(1/r, radial))
		if !(fr < 0) {
			s.VX[i], s.VY[i], s.VZ[i] = 0, 0, 0
			st.Repulsive++
			continue
		}

		speed := math.Sqrt(r * math.Abs(fr) / mass)
		dir := tangent(radial, opts)
		v := r3.Scale(speed, dir)
		s.VX[i], s.VY[i], s.VZ[i] = v.X, v.Y, v.Z
		st.Orbiting++
	}
	return st
}

// tangent returns a unit vector perpendicular to radial.
func tangent(radial r3.Vec, opts Options) r3.Vec {
	t := r3.Cross(radial, opts.Axis)
	if n := r3.Norm(t); n == 0 || n < opts.MinRadius*r3.Norm(radial) {
		t = r3.Cross(radial, opts.Fallback)
	}
	return r3.Unit(t)
}
