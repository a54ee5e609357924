package solver

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newMesh(t testing.TB, n int, l float64) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New(mesh.Dims{X: n, Y: n, Z: n}, r3.Vec{X: l, Y: l, Z: l})
	require.NoError(t, err)
	return m
}

// gaussianBlob fills the mass grid with a smooth spherical blob centred in
// the box.
func gaussianBlob(m *mesh.Mesh, sigmaCells float64) r3.Vec {
	center := r3.Scale(0.5, m.Extent)
	sigma := sigmaCells * m.Cell.X
	for idx := range m.Mass {
		ix, iy, iz := m.Coords(idx)
		d := r3.Sub(m.CellCenter(ix, iy, iz), center)
		m.Mass[idx] = math.Exp(-r3.Norm2(d) / (2 * sigma * sigma))
	}
	return center
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	assert.Equal(t, []string{"relaxation", "spectral"}, reg.Names())

	s, err := reg.Get("Spectral", Params{})
	require.NoError(t, err)
	assert.Equal(t, SpectralName, s.Name())

	s, err = reg.Get("relaxation", Params{Iterations: 5, Workers: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, s.(*Relaxation).Iterations())

	_, err = reg.Get("multigrid", Params{})
	assert.True(t, errors.Is(err, dynamo.ErrUnknownSolver))
}

func TestRelaxationDefaultsIterations(t *testing.T) {
	assert.Equal(t, DefaultIterations, NewRelaxation(0, 1).Iterations())
}

func TestRelaxationSingleSweep(t *testing.T) {
	m := newMesh(t, 5, 5)
	c := m.Index(2, 2, 2)
	m.Mass[c] = 7

	NewRelaxation(1, 1).Solve(m, 1)

	assert.InDelta(t, -1.0, m.Potential[c], 1e-12)
	assert.InDelta(t, -1.0, m.Potential[m.Index(1, 2, 2)], 1e-12)
	assert.InDelta(t, -1.0, m.Potential[m.Index(2, 2, 3)], 1e-12)
	assert.InDelta(t, 0.0, m.Potential[m.Index(1, 1, 2)], 1e-12)
	assert.Equal(t, m.Potential, m.Scratch)
}

func TestRelaxationKeepsShellAtZero(t *testing.T) {
	m := newMesh(t, 8, 8)
	for i := range m.Mass {
		m.Mass[i] = 1
	}
	for i := range m.Potential {
		m.Potential[i] = 99
	}
	NewRelaxation(10, 3).Solve(m, 2)

	for idx, v := range m.Potential {
		ix, iy, iz := m.Coords(idx)
		if !m.Interior(ix, iy, iz) {
			require.Equal(t, 0.0, v, "shell cell %d,%d,%d", ix, iy, iz)
		} else {
			require.Less(t, v, 0.0)
		}
	}
}

func TestRelaxationWorkerInvariant(t *testing.T) {
	m1 := newMesh(t, 12, 1)
	m2 := newMesh(t, 12, 1)
	gaussianBlob(m1, 2)
	gaussianBlob(m2, 2)

	NewRelaxation(20, 1).Solve(m1, 1)
	NewRelaxation(20, 5).Solve(m2, 1)
	assert.Equal(t, m1.Potential, m2.Potential)
}

func TestSignedFrequency(t *testing.T) {
	got := make([]int, 8)
	for n := range got {
		got[n] = SignedFrequency(n, 8)
	}
	assert.Equal(t, []int{0, 1, 2, 3, 4, -3, -2, -1}, got)

	got = make([]int, 5)
	for n := range got {
		got[n] = SignedFrequency(n, 5)
	}
	assert.Equal(t, []int{0, 1, 2, -2, -1}, got)
}

func TestSpectralSinglePlaneWave(t *testing.T) {
	const g = 0.5
	for _, n := range []int{8, 12} {
		m, err := mesh.New(mesh.Dims{X: n, Y: 6, Z: 4}, r3.Vec{X: 3, Y: 2, Z: 1})
		require.NoError(t, err)
		for idx := range m.Mass {
			ix, _, _ := m.Coords(idx)
			m.Mass[idx] = math.Cos(2 * math.Pi * float64(ix) / float64(n))
		}

		NewSpectral(2).Solve(m, g)

		k := 2 * math.Pi / m.Extent.X
		for idx, v := range m.Potential {
			want := -4 * math.Pi * g / (k * k) * m.Mass[idx]
			require.InDelta(t, want, v, 1e-9, "n=%d idx=%d", n, idx)
		}
	}
}

func TestSpectralRemovesMean(t *testing.T) {
	m := newMesh(t, 8, 1)
	for i := range m.Mass {
		m.Mass[i] = 3
	}
	NewSpectral(1).Solve(m, 1)
	for _, v := range m.Potential {
		require.InDelta(t, 0.0, v, 1e-9)
	}
}

func TestSpectralPointMassWell(t *testing.T) {
	m := newMesh(t, 16, 16)
	c := m.Index(8, 8, 8)
	m.Mass[c] = 1

	NewSpectral(4).Solve(m, 1)

	minIdx := 0
	for i, v := range m.Potential {
		if v < m.Potential[minIdx] {
			minIdx = i
		}
	}
	assert.Equal(t, c, minIdx)
	assert.InDelta(t, m.Potential[m.Index(7, 8, 8)], m.Potential[m.Index(9, 8, 8)], 1e-9)
}

func TestSolversAgreeOnSmoothDistribution(t *testing.T) {
	relaxed := newMesh(t, 32, 32)
	spectral := newMesh(t, 32, 32)
	center := gaussianBlob(relaxed, 2.5)
	gaussianBlob(spectral, 2.5)

	NewRelaxation(200, 0).Solve(relaxed, 1)
	NewSpectral(0).Solve(spectral, 1)

	dirs := []r3.Vec{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
		{X: 1, Y: 1}, {X: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: -1, Z: -1},
	}
	for _, d := range dirs {
		p := r3.Add(center, r3.Scale(5, r3.Unit(d)))
		a := relaxed.Gradient(p)
		b := spectral.Gradient(p)
		cos := r3.Cos(a, b)
		assert.Greater(t, cos, 0.95, "direction %v", d)
		// potential wells: the gradient points away from the centre
		assert.Greater(t, r3.Dot(a, d), 0.0)
		assert.Greater(t, r3.Dot(b, d), 0.0)
	}
}

func BenchmarkRelaxation(b *testing.B) {
	m := newMesh(b, 32, 1)
	gaussianBlob(m, 3)
	s := NewRelaxation(60, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Solve(m, 1)
	}
}

func BenchmarkSpectral(b *testing.B) {
	m := newMesh(b, 32, 1)
	gaussianBlob(m, 3)
	s := NewSpectral(0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Solve(m, 1)
	}
}
