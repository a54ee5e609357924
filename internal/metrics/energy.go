package metrics

import (
	"math"

	"github.com/san-kum/pmsim/internal/particles"
	"gonum.org/v1/gonum/stat"
)

type KineticEnergy struct{ energy float64 }

func NewKineticEnergy() *KineticEnergy { return &KineticEnergy{} }

func (k *KineticEnergy) Name() string { return NameKineticEnergy }

func (k *KineticEnergy) Observe(s *particles.Store) {
	e := 0.0
	for i := 0; i < s.Len(); i++ {
		v2 := s.VX[i]*s.VX[i] + s.VY[i]*s.VY[i] + s.VZ[i]*s.VZ[i]
		e += 0.5 * s.M[i] * v2
	}
	k.energy = e
}

func (k *KineticEnergy) Value() float64 { return k.energy }
func (k *KineticEnergy) Reset()         { k.energy = 0 }

// RadiusDrift is the largest relative change of the mean radius seen since
// the first observation.
type RadiusDrift struct {
	initial  float64
	current  float64
	maxDrift float64
	samples  int
}

func NewRadiusDrift() *RadiusDrift { return &RadiusDrift{} }

func (r *RadiusDrift) Name() string { return NameRadiusDrift }

func (r *RadiusDrift) Observe(s *particles.Store) {
	if s.Len() == 0 {
		return
	}
	mean := stat.Mean(Radii(s), nil)
	if r.samples == 0 {
		r.initial = mean
	}
	r.current = mean
	r.samples++

	if r.initial != 0 {
		drift := math.Abs(mean-r.initial) / r.initial
		r.maxDrift = math.Max(r.maxDrift, drift)
	}
}

func (r *RadiusDrift) Value() float64 { return r.maxDrift }

// Current is the signed relative change of the latest observation.
func (r *RadiusDrift) Current() float64 {
	if r.initial == 0 {
		return 0
	}
	return (r.current - r.initial) / r.initial
}

func (r *RadiusDrift) Reset() {
	r.initial = 0
	r.current = 0
	r.maxDrift = 0
	r.samples = 0
}
