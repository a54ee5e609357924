package analysis

import (
	"math"

	"github.com/san-kum/pmsim/internal/particles"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// Profile is a binned radial distribution. Bin i covers [Edges[i], Edges[i+1]).
type Profile struct {
	Edges   []float64
	Count   []float64
	Mass    []float64
	Density []float64
	// Outside counts particles at or beyond the last edge.
	Outside int
	Mean    float64
	StdDev  float64
}

// RadialProfile bins the population by distance from center. maxRadius <= 0
// uses the farthest particle.
func RadialProfile(s *particles.Store, center r3.Vec, bins int, maxRadius float64) Profile {
	if bins < 1 {
		bins = 1
	}
	n := s.Len()
	r := make([]float64, n)
	w := make([]float64, n)
	for i := range r {
		r[i] = r3.Norm(r3.Sub(s.Position(i), center))
	}
	copy(w, s.M)

	p := Profile{
		Edges: make([]float64, bins+1),
		Count: make([]float64, bins),
		Mass:  make([]float64, bins),
	}
	if n == 0 {
		p.Density = make([]float64, bins)
		return p
	}
	p.Mean, p.StdDev = stat.MeanStdDev(r, nil)

	if maxRadius <= 0 {
		maxRadius = 1
		if far := floats.Max(r); far > 0 {
			// the histogram's upper divider is exclusive
			maxRadius = math.Nextafter(far, math.Inf(1))
		}
	}
	floats.Span(p.Edges, 0, maxRadius)

	stat.SortWeighted(r, w)
	inside := len(r)
	for inside > 0 && r[inside-1] >= maxRadius {
		inside--
	}
	p.Outside = n - inside
	stat.Histogram(p.Count, p.Edges, r[:inside], nil)
	stat.Histogram(p.Mass, p.Edges, r[:inside], w[:inside])

	p.Density = make([]float64, bins)
	for i := range p.Density {
		lo, hi := p.Edges[i], p.Edges[i+1]
		vol := 4.0 / 3.0 * math.Pi * (hi*hi*hi - lo*lo*lo)
		p.Density[i] = p.Mass[i] / vol
	}
	return p
}
