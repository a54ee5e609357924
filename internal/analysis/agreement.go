package analysis

import (
	"math"

	"github.com/san-kum/pmsim/internal/mesh"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Agreement summarizes how two potential grids compare at a set of sample
// points.
type Agreement struct {
	Points     int
	MeanCosine float64
	MinCosine  float64
	// Scale is the least-squares factor mapping b's gradients onto a's.
	Scale          float64
	NormalizedRMSE float64
}

// GradientAgreement samples both meshes' gradients at points. Points where
// either gradient vanishes are skipped.
func GradientAgreement(a, b *mesh.Mesh, points []r3.Vec) Agreement {
	ga := make([]float64, 0, 3*len(points))
	gb := make([]float64, 0, 3*len(points))
	res := Agreement{MinCosine: 1}
	sum := 0.0
	for _, p := range points {
		va, vb := a.Gradient(p), b.Gradient(p)
		na, nb := r3.Norm(va), r3.Norm(vb)
		if na == 0 || nb == 0 {
			continue
		}
		c := r3.Dot(va, vb) / (na * nb)
		sum += c
		res.MinCosine = math.Min(res.MinCosine, c)
		res.Points++
		ga = append(ga, va.X, va.Y, va.Z)
		gb = append(gb, vb.X, vb.Y, vb.Z)
	}
	if res.Points == 0 {
		res.MinCosine = 0
		return res
	}
	res.MeanCosine = sum / float64(res.Points)

	bb := floats.Dot(gb, gb)
	res.Scale = floats.Dot(ga, gb) / bb
	floats.Scale(res.Scale, gb)
	diff := floats.Distance(ga, gb, 2)
	res.NormalizedRMSE = diff / floats.Norm(ga, 2)
	return res
}

// InteriorPoints returns the centres of interior cells, every stride-th cell
// along each axis.
func InteriorPoints(m *mesh.Mesh, stride int) []r3.Vec {
	if stride < 1 {
		stride = 1
	}
	var pts []r3.Vec
	for ix := 1; ix < m.Dims.X-1; ix += stride {
		for iy := 1; iy < m.Dims.Y-1; iy += stride {
			for iz := 1; iz < m.Dims.Z-1; iz += stride {
				pts = append(pts, m.CellCenter(ix, iy, iz))
			}
		}
	}
	return pts
}
