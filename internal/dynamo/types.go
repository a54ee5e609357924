package dynamo

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Particle is one row of the particle store. The store itself keeps each
// field in its own array; Particle is the exchange format at the edges.
type Particle struct {
	Pos    r3.Vec
	Vel    r3.Vec
	Mass   float64
	Radius float64
}

// NewParticle returns a particle whose display radius is sqrt(mass).
func NewParticle(pos, vel r3.Vec, mass float64) Particle {
	return Particle{Pos: pos, Vel: vel, Mass: mass, Radius: math.Sqrt(math.Max(mass, 0))}
}

func (p Particle) IsValid() bool {
	for _, v := range [...]float64{p.Pos.X, p.Pos.Y, p.Pos.Z, p.Vel.X, p.Vel.Y, p.Vel.Z, p.Mass} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// BoundaryPolicy selects what the integrator does at the world box walls.
type BoundaryPolicy string

const (
	// BoundaryDrop lets particles leave; the compactor removes them after the tick.
	BoundaryDrop BoundaryPolicy = "drop"
	// BoundaryClamp pins particles to the wall and zeroes the normal velocity.
	BoundaryClamp BoundaryPolicy = "clamp"
	// BoundaryNone lets particles leave and keeps tracking them.
	BoundaryNone BoundaryPolicy = "none"
)

// ParseBoundaryPolicy accepts the policy names case-insensitively.
func ParseBoundaryPolicy(s string) (BoundaryPolicy, error) {
	switch p := BoundaryPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case BoundaryDrop, BoundaryClamp, BoundaryNone:
		return p, nil
	}
	return "", fmt.Errorf("%w: boundary policy %q", ErrInvalidConfig, s)
}

func (p BoundaryPolicy) String() string { return string(p) }
