package mesh

import (
	"errors"
	"testing"

	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func newMesh(t *testing.T, d Dims, extent r3.Vec) *Mesh {
	t.Helper()
	m, err := New(d, extent)
	require.NoError(t, err)
	return m
}

func TestNewRejectsBadShape(t *testing.T) {
	_, err := New(Dims{2, 8, 8}, r3.Vec{X: 1, Y: 1, Z: 1})
	assert.True(t, errors.Is(err, dynamo.ErrInvalidConfig))

	_, err = New(Dims{8, 8, 8}, r3.Vec{X: 1, Y: 0, Z: 1})
	assert.True(t, errors.Is(err, dynamo.ErrInvalidConfig))
}

func TestIndexRoundTrip(t *testing.T) {
	m := newMesh(t, Dims{4, 5, 6}, r3.Vec{X: 4, Y: 5, Z: 6})
	assert.Equal(t, 120, m.Len())
	assert.Equal(t, 1*5*6+2*6+3, m.Index(1, 2, 3))
	for idx := 0; idx < m.Len(); idx++ {
		ix, iy, iz := m.Coords(idx)
		require.Equal(t, idx, m.Index(ix, iy, iz))
	}
}

func TestCellSizeIndependentPerAxis(t *testing.T) {
	m := newMesh(t, Dims{10, 20, 5}, r3.Vec{X: 100, Y: 100, Z: 50})
	assert.InDelta(t, 10.0, m.Cell.X, 1e-12)
	assert.InDelta(t, 5.0, m.Cell.Y, 1e-12)
	assert.InDelta(t, 10.0, m.Cell.Z, 1e-12)
}

func TestDepositCellClamps(t *testing.T) {
	m := newMesh(t, Dims{8, 8, 8}, r3.Vec{X: 8, Y: 8, Z: 8})

	tests := []struct {
		name       string
		p          r3.Vec
		wx, wy, wz int
	}{
		{"interior", r3.Vec{X: 3.5, Y: 0.2, Z: 7.9}, 3, 0, 7},
		{"far wall", r3.Vec{X: 8, Y: 8, Z: 8}, 7, 7, 7},
		{"negative", r3.Vec{X: -0.5, Y: -100, Z: 2}, 0, 0, 2},
		{"outside", r3.Vec{X: 1e9, Y: 9, Z: 3}, 7, 7, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix, iy, iz := m.DepositCell(tt.p)
			assert.Equal(t, []int{tt.wx, tt.wy, tt.wz}, []int{ix, iy, iz})
		})
	}
}

func TestGradientCellClamps(t *testing.T) {
	m := newMesh(t, Dims{8, 8, 8}, r3.Vec{X: 8, Y: 8, Z: 8})
	ix, iy, iz := m.GradientCell(r3.Vec{X: 0, Y: 8, Z: 4.5})
	assert.Equal(t, []int{1, 6, 4}, []int{ix, iy, iz})
}

func TestGradientOfLinearPotential(t *testing.T) {
	m := newMesh(t, Dims{6, 6, 6}, r3.Vec{X: 12, Y: 6, Z: 3})
	for idx := range m.Potential {
		ix, iy, iz := m.Coords(idx)
		c := m.CellCenter(ix, iy, iz)
		m.Potential[idx] = 2*c.X - 3*c.Y + 0.5*c.Z
	}
	g := m.Gradient(r3.Vec{X: 6, Y: 3, Z: 1.5})
	assert.InDelta(t, 2.0, g.X, 1e-9)
	assert.InDelta(t, -3.0, g.Y, 1e-9)
	assert.InDelta(t, 0.5, g.Z, 1e-9)
}

func TestInterior(t *testing.T) {
	m := newMesh(t, Dims{4, 4, 4}, r3.Vec{X: 1, Y: 1, Z: 1})
	assert.True(t, m.Interior(1, 2, 1))
	assert.False(t, m.Interior(0, 2, 1))
	assert.False(t, m.Interior(1, 3, 1))
}
