// Package sim ties the particle store, the mesh and the solvers into one
// particle-mesh simulation.
//
// A tick runs four phases with a barrier between each:
//
//	deposit -> solve -> integrate -> compact
//
// A Simulation is not safe for concurrent use. Callers must not read the
// particle arrays, inject particles or change masses while a tick is in
// flight.
package sim

import (
	"fmt"
	"strings"
	"time"

	"github.com/san-kum/pmsim/internal/deposit"
	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/integrators"
	"github.com/san-kum/pmsim/internal/mesh"
	"github.com/san-kum/pmsim/internal/orbit"
	"github.com/san-kum/pmsim/internal/particles"
	"github.com/san-kum/pmsim/internal/solver"
	"gonum.org/v1/gonum/spatial/r3"
)

type Simulation struct {
	cfg Config

	store      *particles.Store
	mesh       *mesh.Mesh
	depositor  *deposit.Depositor
	integrator *integrators.Euler
	registry   *solver.Registry
	solvers    map[string]solver.Solver

	// blackHole is the store index of the injected black hole, -1 when none.
	blackHole int

	tick    int
	time    float64
	timings PhaseTimings
}

// New allocates the mesh for cfg and returns an empty simulation.
func New(cfg Config) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m, err := mesh.New(cfg.Grid, cfg.Extent)
	if err != nil {
		return nil, err
	}
	return &Simulation{
		cfg:        cfg,
		store:      particles.New(0),
		mesh:       m,
		depositor:  deposit.New(cfg.Workers),
		integrator: integrators.NewEuler(cfg.Boundary, cfg.Workers),
		registry:   solver.NewRegistry(),
		solvers:    make(map[string]solver.Solver),
		blackHole:  -1,
	}, nil
}

// InitSimulation replaces the whole population and resets the clock.
func (s *Simulation) InitSimulation(ps []dynamo.Particle) {
	s.store.Reset(ps)
	s.blackHole = -1
	s.tick = 0
	s.time = 0
	s.mesh.ResetMass()
	s.mesh.ResetPotential()
}

// Reset is InitSimulation under the name the interactive front ends use.
func (s *Simulation) Reset(ps []dynamo.Particle) { s.InitSimulation(ps) }

// Step advances one tick with the relaxation solver.
func (s *Simulation) Step() error { return s.StepWith(solver.RelaxationName) }

// StepWithFFT advances one tick with the spectral solver.
func (s *Simulation) StepWithFFT() error { return s.StepWith(solver.SpectralName) }

// StepWith advances one tick with the named solver.
func (s *Simulation) StepWith(name string) error {
	sv, err := s.solver(name)
	if err != nil {
		return err
	}

	s.solve(sv)

	start := time.Now()
	s.integrator.Step(s.mesh, s.store, s.cfg.Dt)
	s.timings.Integrate = time.Since(start)

	start = time.Now()
	if s.cfg.Boundary == dynamo.BoundaryDrop {
		_, s.blackHole = s.store.CompactTracked(s.mesh.Extent, s.blackHole)
	}
	s.timings.Compact = time.Since(start)

	s.tick++
	s.time += s.cfg.Dt
	return nil
}

// SolvePotential deposits the current population and solves for the
// potential without moving anything.
func (s *Simulation) SolvePotential(name string) error {
	sv, err := s.solver(name)
	if err != nil {
		return err
	}
	s.solve(sv)
	return nil
}

func (s *Simulation) solve(sv solver.Solver) {
	start := time.Now()
	s.depositor.Deposit(s.mesh, s.store)
	s.timings.Deposit = time.Since(start)

	start = time.Now()
	sv.Solve(s.mesh, s.cfg.G)
	s.timings.Solve = time.Since(start)
}

func (s *Simulation) solver(name string) (solver.Solver, error) {
	name = strings.ToLower(name)
	if sv, ok := s.solvers[name]; ok {
		return sv, nil
	}
	sv, err := s.registry.Get(name, solver.Params{Iterations: s.cfg.Iterations, Workers: s.cfg.Workers})
	if err != nil {
		return nil, err
	}
	s.solvers[name] = sv
	return sv, nil
}

// InitOrbits solves the potential of the current population with the named
// solver and gives every particle a circular-orbit velocity about the center
// of mass.
func (s *Simulation) InitOrbits(name string) (orbit.Stats, error) {
	if err := s.SolvePotential(name); err != nil {
		return orbit.Stats{}, err
	}
	return orbit.Initialize(s.store, s.mesh, orbit.DefaultOptions()), nil
}

// AddParticle appends p and returns its index. The index is valid until the
// next compaction.
func (s *Simulation) AddParticle(p dynamo.Particle) int {
	return s.store.Append(p)
}

func (s *Simulation) SetParticleMass(i int, m float64) error {
	return s.store.SetMass(i, m)
}

// SetTimestep changes dt for subsequent ticks.
func (s *Simulation) SetTimestep(dt float64) error {
	if dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, dt)
	}
	s.cfg.Dt = dt
	return nil
}

// NearestParticle returns the index of the particle closest to p.
func (s *Simulation) NearestParticle(p r3.Vec) (int, bool) {
	best, bestD := -1, 0.0
	for i := 0; i < s.store.Len(); i++ {
		d := r3.Norm2(r3.Sub(s.store.Position(i), p))
		if best < 0 || d < bestD {
			best, bestD = i, d
		}
	}
	return best, best >= 0
}

func (s *Simulation) Len() int { return s.store.Len() }

// Positions returns the live position columns. Read them only between ticks.
func (s *Simulation) Positions() (x, y, z []float64) { return s.store.X, s.store.Y, s.store.Z }

func (s *Simulation) Velocities() (vx, vy, vz []float64) {
	return s.store.VX, s.store.VY, s.store.VZ
}

func (s *Simulation) Masses() []float64 { return s.store.M }

func (s *Simulation) Radii() []float64 { return s.store.R }

func (s *Simulation) Particle(i int) (dynamo.Particle, error) { return s.store.At(i) }

func (s *Simulation) Particles() []dynamo.Particle { return s.store.Particles() }

// Store exposes the particle store to read-only consumers such as metrics.
func (s *Simulation) Store() *particles.Store { return s.store }

// Mesh exposes the grids after a tick for analysis and display.
func (s *Simulation) Mesh() *mesh.Mesh { return s.mesh }

func (s *Simulation) Config() Config { return s.cfg }

func (s *Simulation) Solvers() *solver.Registry { return s.registry }

func (s *Simulation) CenterOfMass() (r3.Vec, float64) { return s.store.CenterOfMass() }

func (s *Simulation) Tick() int { return s.tick }

func (s *Simulation) Time() float64 { return s.time }

func (s *Simulation) LastTimings() PhaseTimings { return s.timings }
