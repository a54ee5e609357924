package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/pmsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// DefaultBlackHoleMass is used when InjectBlackHole gets a non-positive mass.
const DefaultBlackHoleMass = 1e6

// InjectBlackHole adds a heavy particle at (x, y) halfway through the world
// depth. If one is already active it is moved there instead.
func (s *Simulation) InjectBlackHole(x, y, mass float64) int {
	if mass <= 0 {
		mass = DefaultBlackHoleMass
	}
	if s.blackHole >= 0 {
		_ = s.MoveBlackHole(x, y)
		return s.blackHole
	}
	pos := r3.Vec{X: x, Y: y, Z: s.mesh.Extent.Z / 2}
	s.blackHole = s.store.Append(dynamo.Particle{Pos: pos, Mass: mass, Radius: math.Sqrt(mass)})
	return s.blackHole
}

// MoveBlackHole repositions the active black hole and stops it.
func (s *Simulation) MoveBlackHole(x, y float64) error {
	if s.blackHole < 0 {
		return fmt.Errorf("%w: no active black hole", dynamo.ErrIndexOutOfRange)
	}
	i := s.blackHole
	if err := s.store.SetPosition(i, r3.Vec{X: x, Y: y, Z: s.store.Z[i]}); err != nil {
		return err
	}
	return s.store.SetVelocity(i, r3.Vec{})
}

// DropBlackHole sets the black hole's mass to zero and forgets it. The
// massless particle stays in the store.
func (s *Simulation) DropBlackHole() {
	if s.blackHole < 0 {
		return
	}
	_ = s.store.SetMass(s.blackHole, 0)
	_ = s.store.SetRadius(s.blackHole, 0)
	s.blackHole = -1
}

// BlackHole returns the current index of the active black hole.
func (s *Simulation) BlackHole() (int, bool) {
	return s.blackHole, s.blackHole >= 0
}
