// Package deposit bins particle mass onto the mesh with nearest-grid-point
// assignment.
//
// With more than one worker each worker fills its own local grid, and the
// local grids are summed into the mesh after every worker has finished. The
// shared mass grid is never written concurrently by two workers.
package deposit

import (
	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/mesh"
	"github.com/san-kum/pmsim/internal/particles"
	"gonum.org/v1/gonum/floats"
)

// DefaultMinChunk is the smallest particle range worth a goroutine.
const DefaultMinChunk = 2048

// reduceChunk is the smallest cell range worth a goroutine in the reduction.
const reduceChunk = 4096

type Depositor struct {
	workers  int
	minChunk int
	pool     *GridPool
}

// New returns a depositor using the given worker count (0 for one per CPU).
func New(workers int) *Depositor {
	return &Depositor{workers: dynamo.Workers(workers), minChunk: DefaultMinChunk}
}

// WithMinChunk overrides the particle chunk threshold. Tests use it to force
// the parallel path on small populations.
func (d *Depositor) WithMinChunk(n int) *Depositor {
	if n < 1 {
		n = 1
	}
	d.minChunk = n
	return d
}

func (d *Depositor) Workers() int { return d.workers }

// Deposit zeroes the mass grid and bins every particle's mass into exactly
// one cell.
func (d *Depositor) Deposit(m *mesh.Mesh, s *particles.Store) {
	m.ResetMass()
	n := s.Len()
	if n == 0 {
		return
	}

	chunks := dynamo.Chunks(n, d.workers, d.minChunk)
	if chunks == 1 {
		depositRange(m, s, m.Mass, 0, n)
		return
	}

	if d.pool == nil || d.pool.Size() != m.Len() {
		d.pool = NewGridPool(m.Len())
	}
	locals := make([][]float64, chunks)
	for w := range locals {
		locals[w] = d.pool.Get()
	}

	dynamo.ParallelForWorkers(n, d.workers, d.minChunk, func(w, start, end int) {
		depositRange(m, s, locals[w], start, end)
	})

	// Cells are reduced in worker order so a fixed worker count is
	// bit-reproducible.
	dynamo.ParallelFor(m.Len(), d.workers, reduceChunk, func(start, end int) {
		dst := m.Mass[start:end]
		for _, local := range locals {
			floats.Add(dst, local[start:end])
		}
	})

	for _, local := range locals {
		d.pool.Put(local)
	}
}

func depositRange(m *mesh.Mesh, s *particles.Store, grid []float64, start, end int) {
	for i := start; i < end; i++ {
		ix, iy, iz := m.DepositCell(s.Position(i))
		grid[m.Index(ix, iy, iz)] += s.M[i]
	}
}
