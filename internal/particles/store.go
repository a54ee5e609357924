// Package particles holds the particle population as parallel arrays.
package particles

import (
	"fmt"
	"math"

	"github.com/san-kum/pmsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Store keeps one array per particle attribute. Index i across all arrays is
// particle i. Indices are only stable until the next compaction.
type Store struct {
	X, Y, Z    []float64
	VX, VY, VZ []float64
	M, R       []float64
}

func New(capacity int) *Store {
	return &Store{
		X:  make([]float64, 0, capacity),
		Y:  make([]float64, 0, capacity),
		Z:  make([]float64, 0, capacity),
		VX: make([]float64, 0, capacity),
		VY: make([]float64, 0, capacity),
		VZ: make([]float64, 0, capacity),
		M:  make([]float64, 0, capacity),
		R:  make([]float64, 0, capacity),
	}
}

// FromParticles builds a store holding a copy of ps.
func FromParticles(ps []dynamo.Particle) *Store {
	s := New(len(ps))
	s.Reset(ps)
	return s
}

// FromArrays adopts existing columns. Every column must have the same length.
func FromArrays(x, y, z, vx, vy, vz, m, r []float64) (*Store, error) {
	n := len(x)
	cols := [...][]float64{y, z, vx, vy, vz, m, r}
	for i, c := range cols {
		if len(c) != n {
			return nil, fmt.Errorf("%w: column %d has %d entries, want %d", dynamo.ErrDimensionMismatch, i+1, len(c), n)
		}
	}
	return &Store{X: x, Y: y, Z: z, VX: vx, VY: vy, VZ: vz, M: m, R: r}, nil
}

// Reset replaces the whole population, reusing capacity where possible.
func (s *Store) Reset(ps []dynamo.Particle) {
	s.truncate(0)
	for _, p := range ps {
		s.Append(p)
	}
}

func (s *Store) Len() int { return len(s.X) }

// Append adds one particle and returns its index.
func (s *Store) Append(p dynamo.Particle) int {
	s.X = append(s.X, p.Pos.X)
	s.Y = append(s.Y, p.Pos.Y)
	s.Z = append(s.Z, p.Pos.Z)
	s.VX = append(s.VX, p.Vel.X)
	s.VY = append(s.VY, p.Vel.Y)
	s.VZ = append(s.VZ, p.Vel.Z)
	s.M = append(s.M, p.Mass)
	s.R = append(s.R, p.Radius)
	return len(s.X) - 1
}

func (s *Store) checkIndex(i int) error {
	if i < 0 || i >= s.Len() {
		return fmt.Errorf("%w: %d (len %d)", dynamo.ErrIndexOutOfRange, i, s.Len())
	}
	return nil
}

// At returns a copy of particle i.
func (s *Store) At(i int) (dynamo.Particle, error) {
	if err := s.checkIndex(i); err != nil {
		return dynamo.Particle{}, err
	}
	return dynamo.Particle{
		Pos:    s.Position(i),
		Vel:    s.Velocity(i),
		Mass:   s.M[i],
		Radius: s.R[i],
	}, nil
}

// Particles copies the store out into rows.
func (s *Store) Particles() []dynamo.Particle {
	out := make([]dynamo.Particle, s.Len())
	for i := range out {
		out[i], _ = s.At(i)
	}
	return out
}

// SetMass changes the mass of particle i in place. The display radius is
// left untouched.
func (s *Store) SetMass(i int, m float64) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.M[i] = m
	return nil
}

func (s *Store) SetRadius(i int, r float64) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.R[i] = r
	return nil
}

func (s *Store) SetPosition(i int, p r3.Vec) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.X[i], s.Y[i], s.Z[i] = p.X, p.Y, p.Z
	return nil
}

func (s *Store) SetVelocity(i int, v r3.Vec) error {
	if err := s.checkIndex(i); err != nil {
		return err
	}
	s.VX[i], s.VY[i], s.VZ[i] = v.X, v.Y, v.Z
	return nil
}

// Position does not bounds-check; use it inside loops over [0, Len()).
func (s *Store) Position(i int) r3.Vec { return r3.Vec{X: s.X[i], Y: s.Y[i], Z: s.Z[i]} }

func (s *Store) Velocity(i int) r3.Vec { return r3.Vec{X: s.VX[i], Y: s.VY[i], Z: s.VZ[i]} }

func (s *Store) TotalMass() float64 { return floats.Sum(s.M) }

// CenterOfMass returns the mass-weighted centroid and the total mass. With a
// total mass of zero the centroid is the origin.
func (s *Store) CenterOfMass() (r3.Vec, float64) {
	total := s.TotalMass()
	if total == 0 {
		return r3.Vec{}, 0
	}
	c := r3.Vec{
		X: floats.Dot(s.M, s.X),
		Y: floats.Dot(s.M, s.Y),
		Z: floats.Dot(s.M, s.Z),
	}
	return r3.Scale(1/total, c), total
}

// Validate reports ErrInvalidState for the first particle carrying NaN or Inf.
func (s *Store) Validate() error {
	for i := 0; i < s.Len(); i++ {
		for _, v := range [...]float64{s.X[i], s.Y[i], s.Z[i], s.VX[i], s.VY[i], s.VZ[i], s.M[i]} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: particle %d", dynamo.ErrInvalidState, i)
			}
		}
	}
	return nil
}

func (s *Store) Clone() *Store {
	c := New(s.Len())
	c.X = append(c.X, s.X...)
	c.Y = append(c.Y, s.Y...)
	c.Z = append(c.Z, s.Z...)
	c.VX = append(c.VX, s.VX...)
	c.VY = append(c.VY, s.VY...)
	c.VZ = append(c.VZ, s.VZ...)
	c.M = append(c.M, s.M...)
	c.R = append(c.R, s.R...)
	return c
}

func (s *Store) truncate(n int) {
	s.X = s.X[:n]
	s.Y = s.Y[:n]
	s.Z = s.Z[:n]
	s.VX = s.VX[:n]
	s.VY = s.VY[:n]
	s.VZ = s.VZ[:n]
	s.M = s.M[:n]
	s.R = s.R[:n]
}
