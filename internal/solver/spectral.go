package solver

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

const SpectralName = "spectral"

// dcThreshold is the k^2 below which a mode counts as the mean and is zeroed.
const dcThreshold = 1e-12

// Spectral solves the periodic Poisson equation exactly on the grid modes.
// It keeps its complex work buffer and the Green's function between calls.
type Spectral struct {
	workers int

	buf   []complex128
	green []float64

	greenDims   mesh.Dims
	greenExtent r3.Vec
}

func NewSpectral(workers int) *Spectral {
	return &Spectral{workers: dynamo.Workers(workers)}
}

func (s *Spectral) Name() string { return SpectralName }

func (s *Spectral) Solve(m *mesh.Mesh, g float64) {
	n := m.Len()
	if len(s.buf) != n {
		s.buf = make([]complex128, n)
	}
	for i, v := range m.Mass {
		s.buf[i] = complex(v, 0)
	}

	transform3D(m.Dims, s.buf, s.workers, fft.FFT)

	green := s.greens(m)
	for i, k := range green {
		s.buf[i] *= complex(g*k, 0)
	}

	transform3D(m.Dims, s.buf, s.workers, fft.IFFT)

	for i := range m.Potential {
		m.Potential[i] = real(s.buf[i])
	}
}

// greens returns -4*pi/k^2 per mode (zero at DC), recomputed only when the
// mesh shape changes.
func (s *Spectral) greens(m *mesh.Mesh) []float64 {
	if s.green != nil && s.greenDims == m.Dims && s.greenExtent == m.Extent {
		return s.green
	}
	d := m.Dims
	s.green = make([]float64, d.Len())
	s.greenDims, s.greenExtent = d, m.Extent

	for ix := 0; ix < d.X; ix++ {
		kx := Wavenumber(ix, d.X, m.Extent.X)
		for iy := 0; iy < d.Y; iy++ {
			ky := Wavenumber(iy, d.Y, m.Extent.Y)
			row := m.Index(ix, iy, 0)
			for iz := 0; iz < d.Z; iz++ {
				kz := Wavenumber(iz, d.Z, m.Extent.Z)
				k2 := kx*kx + ky*ky + kz*kz
				if k2 < dcThreshold {
					continue
				}
				s.green[row+iz] = -4 * math.Pi / k2
			}
		}
	}
	return s.green
}

// SignedFrequency wraps mode n of an axis with dim samples to the signed
// range used by the DFT: n for n <= dim/2, n-dim above.
func SignedFrequency(n, dim int) int {
	if n <= dim/2 {
		return n
	}
	return n - dim
}

// Wavenumber is the angular wavenumber of mode n on an axis of length l.
func Wavenumber(n, dim int, l float64) float64 {
	return 2 * math.Pi * float64(SignedFrequency(n, dim)) / l
}

// transform3D applies f to every line along z, then y, then x.
func transform3D(d mesh.Dims, data []complex128, workers int, f func([]complex128) []complex128) {
	yz := d.Y * d.Z
	// z lines: contiguous
	transformAxis(d.X*d.Y, d.Z, 1, workers, data, f, func(l int) int {
		return l * d.Z
	})
	// y lines: one per (ix, iz)
	transformAxis(d.X*d.Z, d.Y, d.Z, workers, data, f, func(l int) int {
		return (l/d.Z)*yz + l%d.Z
	})
	// x lines: one per (iy, iz)
	transformAxis(yz, d.X, yz, workers, data, f, func(l int) int {
		return l
	})
}

func transformAxis(lines, length, stride, workers int, data []complex128, f func([]complex128) []complex128, base func(int) int) {
	dynamo.ParallelFor(lines, workers, 16, func(start, end int) {
		line := make([]complex128, length)
		for l := start; l < end; l++ {
			b := base(l)
			for i := range line {
				line[i] = data[b+i*stride]
			}
			out := f(line)
			for i, v := range out {
				data[b+i*stride] = v
			}
		}
	})
}
