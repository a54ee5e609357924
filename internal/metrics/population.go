package metrics

import (
	"math"

	"github.com/san-kum/pmsim/internal/particles"
	"gonum.org/v1/gonum/stat"
)

const (
	NamePopulation    = "population"
	NameTotalMass     = "total_mass"
	NameMeanRadius    = "mean_radius"
	NameRadiusSpread  = "radius_spread"
	NameKineticEnergy = "kinetic_energy"
	NameRadiusDrift   = "radius_drift"
)

type Population struct{ count int }

func NewPopulation() *Population { return &Population{} }

func (p *Population) Name() string               { return NamePopulation }
func (p *Population) Observe(s *particles.Store) { p.count = s.Len() }
func (p *Population) Value() float64             { return float64(p.count) }
func (p *Population) Reset()                     { p.count = 0 }

type TotalMass struct{ mass float64 }

func NewTotalMass() *TotalMass { return &TotalMass{} }

func (t *TotalMass) Name() string               { return NameTotalMass }
func (t *TotalMass) Observe(s *particles.Store) { t.mass = s.TotalMass() }
func (t *TotalMass) Value() float64             { return t.mass }
func (t *TotalMass) Reset()                     { t.mass = 0 }

// Radii returns every particle's distance from the population's center of
// mass.
func Radii(s *particles.Store) []float64 {
	c, _ := s.CenterOfMass()
	r := make([]float64, s.Len())
	for i := range r {
		dx, dy, dz := s.X[i]-c.X, s.Y[i]-c.Y, s.Z[i]-c.Z
		r[i] = math.Sqrt(dx*dx + dy*dy + dz*dz)
	}
	return r
}

// MeanRadius is the mean distance from the center of mass at the last
// observation.
type MeanRadius struct{ mean float64 }

func NewMeanRadius() *MeanRadius { return &MeanRadius{} }

func (m *MeanRadius) Name() string { return NameMeanRadius }

func (m *MeanRadius) Observe(s *particles.Store) {
	if s.Len() == 0 {
		m.mean = 0
		return
	}
	m.mean = stat.Mean(Radii(s), nil)
}

func (m *MeanRadius) Value() float64 { return m.mean }
func (m *MeanRadius) Reset()         { m.mean = 0 }

// RadiusSpread is the standard deviation of the distances from the center
// of mass.
type RadiusSpread struct{ std float64 }

func NewRadiusSpread() *RadiusSpread { return &RadiusSpread{} }

func (r *RadiusSpread) Name() string { return NameRadiusSpread }

func (r *RadiusSpread) Observe(s *particles.Store) {
	if s.Len() < 2 {
		r.std = 0
		return
	}
	r.std = stat.StdDev(Radii(s), nil)
}

func (r *RadiusSpread) Value() float64 { return r.std }
func (r *RadiusSpread) Reset()         { r.std = 0 }
