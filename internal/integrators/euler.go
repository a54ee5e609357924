// Package integrators advances particles through the potential field.
package integrators

import (
	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/mesh"
	"github.com/san-kum/pmsim/internal/particles"
)

// DefaultMinChunk is the smallest particle range worth a goroutine.
const DefaultMinChunk = 1024

// Euler is a semi-implicit (symplectic) Euler integrator: the velocity is
// kicked by the grid force first and the position drifts with the new
// velocity.
type Euler struct {
	policy   dynamo.BoundaryPolicy
	workers  int
	minChunk int
}

func NewEuler(policy dynamo.BoundaryPolicy, workers int) *Euler {
	return &Euler{policy: policy, workers: dynamo.Workers(workers), minChunk: DefaultMinChunk}
}

func (e *Euler) Policy() dynamo.BoundaryPolicy { return e.policy }

// Step moves every particle by one timestep using the current potential.
// The force on a particle does not depend on its own mass.
func (e *Euler) Step(m *mesh.Mesh, s *particles.Store, dt float64) {
	clamp := e.policy == dynamo.BoundaryClamp
	dynamo.ParallelFor(s.Len(), e.workers, e.minChunk, func(start, end int) {
		for i := start; i < end; i++ {
			grad := m.Gradient(s.Position(i))

			vx := s.VX[i] - grad.X*dt
			vy := s.VY[i] - grad.Y*dt
			vz := s.VZ[i] - grad.Z*dt

			px := s.X[i] + vx*dt
			py := s.Y[i] + vy*dt
			pz := s.Z[i] + vz*dt

			if clamp {
				px, vx = clampAxis(px, vx, m.Extent.X)
				py, vy = clampAxis(py, vy, m.Extent.Y)
				pz, vz = clampAxis(pz, vz, m.Extent.Z)
			}

			s.X[i], s.Y[i], s.Z[i] = px, py, pz
			s.VX[i], s.VY[i], s.VZ[i] = vx, vy, vz
		}
	})
}

// clampAxis pins p to [0, extent] and stops motion along the axis on contact.
func clampAxis(p, v, extent float64) (float64, float64) {
	if p < 0 {
		return 0, 0
	}
	if p > extent {
		return extent, 0
	}
	return p, v
}
