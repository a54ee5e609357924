package solver

import (
	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/mesh"
	"gonum.org/v1/gonum/floats"
)

const (
	RelaxationName = "relaxation"

	// DefaultIterations is used when a relaxation solver is built with a
	// non-positive iteration count.
	DefaultIterations = 60
)

// copyChunk is the smallest cell range worth a goroutine during copy-back.
const copyChunk = 1 << 14

// Relaxation is a Jacobi-style smoother: every interior cell becomes the mean
// of itself and its six neighbours, repeated a fixed number of times.
// The boundary shell stays at zero.
type Relaxation struct {
	iterations int
	workers    int
}

func NewRelaxation(iterations, workers int) *Relaxation {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &Relaxation{iterations: iterations, workers: dynamo.Workers(workers)}
}

func (r *Relaxation) Name() string { return RelaxationName }

func (r *Relaxation) Iterations() int { return r.iterations }

func (r *Relaxation) Solve(m *mesh.Mesh, g float64) {
	floats.ScaleTo(m.Scratch, -g, m.Mass)
	zeroShell(m)

	gx := m.Dims.X
	for it := 0; it < r.iterations; it++ {
		// slabs along x; plane ix is written by exactly one worker
		dynamo.ParallelFor(gx-2, r.workers, 1, func(start, end int) {
			for ix := start + 1; ix < end+1; ix++ {
				sweepPlane(m, ix)
			}
		})
		dynamo.ParallelFor(m.Len(), r.workers, copyChunk, func(start, end int) {
			copy(m.Scratch[start:end], m.Potential[start:end])
		})
	}
}

func sweepPlane(m *mesh.Mesh, ix int) {
	sx, sy, _ := m.Strides()
	src, dst := m.Scratch, m.Potential
	for iy := 1; iy < m.Dims.Y-1; iy++ {
		row := m.Index(ix, iy, 0)
		for iz := 1; iz < m.Dims.Z-1; iz++ {
			idx := row + iz
			dst[idx] = (src[idx] +
				src[idx+sx] + src[idx-sx] +
				src[idx+sy] + src[idx-sy] +
				src[idx+1] + src[idx-1]) / 7
		}
	}
}

// zeroShell clears the potential on the one-cell boundary so a previous
// solve by another strategy cannot leak into the fixed boundary.
func zeroShell(m *mesh.Mesh) {
	d := m.Dims
	for ix := 0; ix < d.X; ix++ {
		for iy := 0; iy < d.Y; iy++ {
			if ix == 0 || ix == d.X-1 || iy == 0 || iy == d.Y-1 {
				row := m.Index(ix, iy, 0)
				clear(m.Potential[row : row+d.Z])
				continue
			}
			m.Potential[m.Index(ix, iy, 0)] = 0
			m.Potential[m.Index(ix, iy, d.Z-1)] = 0
		}
	}
}
