package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/mesh"
	"github.com/san-kum/pmsim/internal/particles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRadialProfile(t *testing.T) {
	center := r3.Vec{X: 50, Y: 50, Z: 50}
	s := particles.FromParticles([]dynamo.Particle{
		dynamo.NewParticle(r3.Add(center, r3.Vec{X: 1}), r3.Vec{}, 1),
		dynamo.NewParticle(r3.Add(center, r3.Vec{Y: 3}), r3.Vec{}, 2),
		dynamo.NewParticle(r3.Add(center, r3.Vec{Z: -3.5}), r3.Vec{}, 4),
		dynamo.NewParticle(r3.Add(center, r3.Vec{X: 12}), r3.Vec{}, 8),
	})

	p := RadialProfile(s, center, 4, 8)
	require.Len(t, p.Count, 4)
	assert.Equal(t, []float64{0, 2, 4, 6, 8}, p.Edges)
	assert.Equal(t, []float64{1, 2, 0, 0}, p.Count)
	assert.Equal(t, []float64{1, 6, 0, 0}, p.Mass)
	assert.Equal(t, 1, p.Outside)
	assert.InDelta(t, (1+3+3.5+12)/4.0, p.Mean, 1e-12)
	assert.InDelta(t, 1/(4.0/3.0*math.Pi*8), p.Density[0], 1e-12)
}

func TestRadialProfileAutoRange(t *testing.T) {
	s := particles.FromParticles([]dynamo.Particle{
		dynamo.NewParticle(r3.Vec{X: 1}, r3.Vec{}, 1),
		dynamo.NewParticle(r3.Vec{X: 5}, r3.Vec{}, 1),
	})
	p := RadialProfile(s, r3.Vec{}, 5, 0)
	assert.Zero(t, p.Outside)
	assert.Equal(t, 2.0, floats.Sum(p.Count))
	assert.Equal(t, 1.0, p.Count[4])
}

func TestRadialProfileEmpty(t *testing.T) {
	p := RadialProfile(particles.New(0), r3.Vec{}, 3, 10)
	assert.Len(t, p.Density, 3)
	assert.Zero(t, floats.Sum(p.Count))
}

func bowl(t *testing.T, scale float64) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New(mesh.Dims{X: 12, Y: 12, Z: 12}, r3.Vec{X: 12, Y: 12, Z: 12})
	require.NoError(t, err)
	c := r3.Scale(0.5, m.Extent)
	for idx := range m.Potential {
		ix, iy, iz := m.Coords(idx)
		d := r3.Sub(m.CellCenter(ix, iy, iz), c)
		m.Potential[idx] = scale * (r3.Norm2(d) + 0.3*d.X)
	}
	return m
}

func TestGradientAgreementIdentical(t *testing.T) {
	a := bowl(t, 1)
	pts := InteriorPoints(a, 2)
	require.NotEmpty(t, pts)

	res := GradientAgreement(a, bowl(t, 1), pts)
	assert.Equal(t, len(pts), res.Points)
	assert.InDelta(t, 1, res.MeanCosine, 1e-12)
	assert.InDelta(t, 1, res.MinCosine, 1e-12)
	assert.InDelta(t, 1, res.Scale, 1e-12)
	assert.InDelta(t, 0, res.NormalizedRMSE, 1e-12)
}

func TestGradientAgreementIgnoresScale(t *testing.T) {
	res := GradientAgreement(bowl(t, 1), bowl(t, 4), InteriorPoints(bowl(t, 1), 1))
	assert.InDelta(t, 1, res.MeanCosine, 1e-12)
	assert.InDelta(t, 0.25, res.Scale, 1e-12)
	assert.InDelta(t, 0, res.NormalizedRMSE, 1e-9)
}

func TestGradientAgreementOpposite(t *testing.T) {
	a := bowl(t, 1)
	res := GradientAgreement(a, bowl(t, -1), InteriorPoints(a, 3))
	assert.InDelta(t, -1, res.MeanCosine, 1e-12)
	assert.InDelta(t, -1, res.Scale, 1e-12)
}

func TestGradientAgreementFlat(t *testing.T) {
	a := bowl(t, 0)
	res := GradientAgreement(a, a, InteriorPoints(a, 1))
	assert.Zero(t, res.Points)
	assert.Zero(t, res.MeanCosine)
}

func TestDominantPeriod(t *testing.T) {
	const dt = 0.5
	series := make([]float64, 200)
	for i := range series {
		series[i] = 10 + math.Sin(2*math.Pi*float64(i)/20)
	}
	assert.InDelta(t, 20*dt, DominantPeriod(series, dt), 1e-9)

	ps := PowerSpectrum(series)
	assert.Len(t, ps, 100)
	assert.InDelta(t, 0, ps[0], 1e-9)
}

func TestDominantPeriodFlat(t *testing.T) {
	assert.Zero(t, DominantPeriod([]float64{3, 3, 3, 3}, 1))
	assert.Zero(t, DominantPeriod([]float64{1}, 1))
}
