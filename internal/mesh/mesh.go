// Package mesh implements the fixed 3D grid the particle-mesh method bins
// mass onto and solves the potential on.
//
// All three buffers are flattened with x slowest and z fastest:
//
//	index = ix*Y*Z + iy*Z + iz
package mesh

import (
	"fmt"
	"math"

	"github.com/san-kum/pmsim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// MinDim is the smallest grid dimension with at least one interior cell.
const MinDim = 3

// Dims is the grid resolution per axis.
type Dims struct {
	X, Y, Z int
}

func (d Dims) Len() int { return d.X * d.Y * d.Z }

// Mesh owns the mass, potential and scratch grids. Buffers are allocated once
// and only their contents change afterwards.
type Mesh struct {
	Dims   Dims
	Extent r3.Vec
	Cell   r3.Vec

	Mass      []float64
	Potential []float64
	Scratch   []float64
}

// New allocates a mesh covering [0, extent] with d cells per axis.
func New(d Dims, extent r3.Vec) (*Mesh, error) {
	if d.X < MinDim || d.Y < MinDim || d.Z < MinDim {
		return nil, fmt.Errorf("%w: grid %dx%dx%d, need at least %d per axis", dynamo.ErrInvalidConfig, d.X, d.Y, d.Z, MinDim)
	}
	if !(extent.X > 0 && extent.Y > 0 && extent.Z > 0) {
		return nil, fmt.Errorf("%w: world extent %v must be positive", dynamo.ErrInvalidConfig, extent)
	}
	n := d.Len()
	return &Mesh{
		Dims:   d,
		Extent: extent,
		Cell: r3.Vec{
			X: extent.X / float64(d.X),
			Y: extent.Y / float64(d.Y),
			Z: extent.Z / float64(d.Z),
		},
		Mass:      make([]float64, n),
		Potential: make([]float64, n),
		Scratch:   make([]float64, n),
	}, nil
}

func (m *Mesh) Len() int { return len(m.Mass) }

// Index flattens a cell coordinate. It does not clamp.
func (m *Mesh) Index(ix, iy, iz int) int {
	return ix*m.Dims.Y*m.Dims.Z + iy*m.Dims.Z + iz
}

// Coords is the inverse of Index.
func (m *Mesh) Coords(idx int) (ix, iy, iz int) {
	yz := m.Dims.Y * m.Dims.Z
	ix = idx / yz
	rem := idx % yz
	return ix, rem / m.Dims.Z, rem % m.Dims.Z
}

// Strides returns the flat index offsets of one step along x, y and z.
func (m *Mesh) Strides() (sx, sy, sz int) {
	return m.Dims.Y * m.Dims.Z, m.Dims.Z, 1
}

func cellIndex(pos, cell float64, lo, hi int) int {
	f := math.Floor(pos / cell)
	if !(f >= float64(lo)) {
		return lo
	}
	if f > float64(hi) {
		return hi
	}
	return int(f)
}

// DepositCell returns the cell a position bins into, clamped to
// [0, dim-1] per axis. A position exactly on the far wall lands in the last
// cell.
func (m *Mesh) DepositCell(p r3.Vec) (ix, iy, iz int) {
	return cellIndex(p.X, m.Cell.X, 0, m.Dims.X-1),
		cellIndex(p.Y, m.Cell.Y, 0, m.Dims.Y-1),
		cellIndex(p.Z, m.Cell.Z, 0, m.Dims.Z-1)
}

// GradientCell returns the cell used for force sampling, clamped to
// [1, dim-2] so both neighbours exist.
func (m *Mesh) GradientCell(p r3.Vec) (ix, iy, iz int) {
	return cellIndex(p.X, m.Cell.X, 1, m.Dims.X-2),
		cellIndex(p.Y, m.Cell.Y, 1, m.Dims.Y-2),
		cellIndex(p.Z, m.Cell.Z, 1, m.Dims.Z-2)
}

// GradientAt is the central-difference potential gradient at an interior
// cell.
func (m *Mesh) GradientAt(ix, iy, iz int) r3.Vec {
	sx, sy, sz := m.Strides()
	base := m.Index(ix, iy, iz)
	phi := m.Potential
	return r3.Vec{
		X: (phi[base+sx] - phi[base-sx]) / (2 * m.Cell.X),
		Y: (phi[base+sy] - phi[base-sy]) / (2 * m.Cell.Y),
		Z: (phi[base+sz] - phi[base-sz]) / (2 * m.Cell.Z),
	}
}

// Gradient samples the potential gradient at the cell containing p.
func (m *Mesh) Gradient(p r3.Vec) r3.Vec {
	return m.GradientAt(m.GradientCell(p))
}

// CellCenter returns the world position of a cell's centre.
func (m *Mesh) CellCenter(ix, iy, iz int) r3.Vec {
	return r3.Vec{
		X: (float64(ix) + 0.5) * m.Cell.X,
		Y: (float64(iy) + 0.5) * m.Cell.Y,
		Z: (float64(iz) + 0.5) * m.Cell.Z,
	}
}

func (m *Mesh) ResetMass() { clear(m.Mass) }

func (m *Mesh) ResetPotential() {
	clear(m.Potential)
	clear(m.Scratch)
}

func (m *Mesh) TotalMass() float64 { return floats.Sum(m.Mass) }

// Interior reports whether a cell is off the one-cell boundary shell.
func (m *Mesh) Interior(ix, iy, iz int) bool {
	return ix > 0 && ix < m.Dims.X-1 &&
		iy > 0 && iy < m.Dims.Y-1 &&
		iz > 0 && iz < m.Dims.Z-1
}
