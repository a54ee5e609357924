// Package figures generates initial particle layouts by name.
package figures

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/san-kum/pmsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Spec parameterises a figure. Count is the number of ordinary particles; a
// central body is added on top of it when CenterMass is positive.
type Spec struct {
	Count      int
	Seed       int64
	Center     r3.Vec
	CenterMass float64
	MinRadius  float64
	MaxRadius  float64
	MassFrom   float64
	MassUntil  float64
}

type Generator interface {
	Generate(spec Spec) []dynamo.Particle
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(spec Spec) []dynamo.Particle

func (f GeneratorFunc) Generate(spec Spec) []dynamo.Particle { return f(spec) }

type Registry struct {
	generators map[string]Generator
}

func NewRegistry() *Registry {
	r := &Registry{generators: make(map[string]Generator)}

	r.Register("shell", GeneratorFunc(Shell))
	r.Register("sphere", GeneratorFunc(Sphere))
	r.Register("disk", GeneratorFunc(Disk))
	r.Register("cube", GeneratorFunc(Cube))
	r.Register("torus", GeneratorFunc(Torus))
	r.Register("mobius", GeneratorFunc(Mobius))
	r.Register("binary", GeneratorFunc(Binary))

	return r
}

func (r *Registry) Register(name string, g Generator) {
	r.generators[strings.ToLower(name)] = g
}

func (r *Registry) Get(name string) (Generator, error) {
	g, ok := r.generators[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %s)", dynamo.ErrUnknownFigure, name, strings.Join(r.Names(), ", "))
	}
	return g, nil
}

func (r *Registry) Generate(name string, spec Spec) ([]dynamo.Particle, error) {
	g, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return g.Generate(spec), nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s Spec) rng() *rand.Rand { return rand.New(rand.NewSource(s.Seed)) }

func (s Spec) mass(rng *rand.Rand) float64 {
	if s.MassUntil <= s.MassFrom {
		return s.MassFrom
	}
	return s.MassFrom + rng.Float64()*(s.MassUntil-s.MassFrom)
}

func (s Spec) withCenter(ps []dynamo.Particle) []dynamo.Particle {
	if s.CenterMass <= 0 {
		return ps
	}
	return append([]dynamo.Particle{dynamo.NewParticle(s.Center, r3.Vec{}, s.CenterMass)}, ps...)
}

// unitVector is uniform on the unit sphere.
func unitVector(rng *rand.Rand) r3.Vec {
	z := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	rxy := math.Sqrt(1 - z*z)
	return r3.Vec{X: rxy * math.Cos(phi), Y: rxy * math.Sin(phi), Z: z}
}

// Shell spreads particles uniformly over the spherical shell between
// MinRadius and MaxRadius.
func Shell(spec Spec) []dynamo.Particle {
	rng := spec.rng()
	ps := make([]dynamo.Particle, 0, spec.Count+1)
	for i := 0; i < spec.Count; i++ {
		r := spec.MinRadius + rng.Float64()*(spec.MaxRadius-spec.MinRadius)
		pos := r3.Add(spec.Center, r3.Scale(r, unitVector(rng)))
		ps = append(ps, dynamo.NewParticle(pos, r3.Vec{}, spec.mass(rng)))
	}
	return spec.withCenter(ps)
}

// Sphere fills the ball of radius MaxRadius with uniform density.
func Sphere(spec Spec) []dynamo.Particle {
	rng := spec.rng()
	ps := make([]dynamo.Particle, 0, spec.Count+1)
	for i := 0; i < spec.Count; i++ {
		r := spec.MaxRadius * math.Cbrt(rng.Float64())
		pos := r3.Add(spec.Center, r3.Scale(r, unitVector(rng)))
		ps = append(ps, dynamo.NewParticle(pos, r3.Vec{}, spec.mass(rng)))
	}
	return spec.withCenter(ps)
}

// Cube fills the axis-aligned cube of half-side MaxRadius.
func Cube(spec Spec) []dynamo.Particle {
	rng := spec.rng()
	ps := make([]dynamo.Particle, 0, spec.Count+1)
	h := spec.MaxRadius
	for i := 0; i < spec.Count; i++ {
		off := r3.Vec{X: (2*rng.Float64() - 1) * h, Y: (2*rng.Float64() - 1) * h, Z: (2*rng.Float64() - 1) * h}
		ps = append(ps, dynamo.NewParticle(r3.Add(spec.Center, off), r3.Vec{}, spec.mass(rng)))
	}
	return spec.withCenter(ps)
}

// stellar mass classes of the disk figure: population share and mass range
var diskClasses = []struct {
	share    float64
	from, to float64
}{
	{0.70, 0.08, 0.60},
	{0.125, 0.60, 1.50},
	{0.05, 1.50, 8.00},
	{0.005, 8.00, 150.0},
}

// remnant mass range; remnants take whatever the classes above leave
const remnantFrom, remnantTo = 0.90, 1.10

// Disk is a thin rotating-galaxy style disk in the xy plane with a stellar
// mass mix. The disk thins out towards its rim. MinRadius is the half
// thickness at the centre.
func Disk(spec Spec) []dynamo.Particle {
	rng := spec.rng()
	ps := make([]dynamo.Particle, 0, spec.Count+1)
	used := 0
	emit := func(n int, from, to float64) {
		for i := 0; i < n; i++ {
			r := rng.Float64() * spec.MaxRadius
			theta := 2 * math.Pi * rng.Float64()
			factor := 0.0001
			if spec.MaxRadius > 0 {
				factor = math.Min(math.Max(1-math.Sqrt(r/spec.MaxRadius), 0), 1)
			}
			h := spec.MinRadius * factor
			pos := r3.Vec{
				X: spec.Center.X + r*math.Cos(theta),
				Y: spec.Center.Y + r*math.Sin(theta),
				Z: spec.Center.Z + (2*rng.Float64()-1)*h,
			}
			m := from + rng.Float64()*(to-from)
			ps = append(ps, dynamo.NewParticle(pos, r3.Vec{}, m))
		}
	}
	for _, c := range diskClasses {
		n := int(math.Round(float64(spec.Count) * c.share))
		if used+n > spec.Count {
			n = spec.Count - used
		}
		emit(n, c.from, c.to)
		used += n
	}
	emit(spec.Count-used, remnantFrom, remnantTo)
	return spec.withCenter(ps)
}

// Torus places particles inside a ring of major radius MaxRadius and tube
// radius MinRadius in the xy plane.
func Torus(spec Spec) []dynamo.Particle {
	rng := spec.rng()
	ps := make([]dynamo.Particle, 0, spec.Count+1)
	for i := 0; i < spec.Count; i++ {
		u := 2 * math.Pi * rng.Float64()
		v := 2 * math.Pi * rng.Float64()
		tube := spec.MinRadius * math.Sqrt(rng.Float64())
		ring := spec.MaxRadius + tube*math.Cos(v)
		off := r3.Vec{X: ring * math.Cos(u), Y: ring * math.Sin(u), Z: tube * math.Sin(v)}
		ps = append(ps, dynamo.NewParticle(r3.Add(spec.Center, off), r3.Vec{}, spec.mass(rng)))
	}
	return spec.withCenter(ps)
}

// Mobius lays particles on a single-twist Mobius strip of radius MaxRadius
// and half width MinRadius.
func Mobius(spec Spec) []dynamo.Particle {
	rng := spec.rng()
	ps := make([]dynamo.Particle, 0, spec.Count+1)
	for i := 0; i < spec.Count; i++ {
		t := 2 * math.Pi * rng.Float64()
		w := (2*rng.Float64() - 1) * spec.MinRadius
		ring := spec.MaxRadius + w*math.Cos(t/2)
		off := r3.Vec{X: ring * math.Cos(t), Y: ring * math.Sin(t), Z: w * math.Sin(t/2)}
		ps = append(ps, dynamo.NewParticle(r3.Add(spec.Center, off), r3.Vec{}, spec.mass(rng)))
	}
	return spec.withCenter(ps)
}

// Binary places two equal bodies at rest, MinRadius either side of the centre
// along x. Count and the mass range are ignored; each body has CenterMass/2,
// or MassFrom when CenterMass is not set.
func Binary(spec Spec) []dynamo.Particle {
	m := spec.CenterMass / 2
	if m <= 0 {
		m = spec.MassFrom
	}
	off := r3.Vec{X: spec.MinRadius}
	return []dynamo.Particle{
		dynamo.NewParticle(r3.Sub(spec.Center, off), r3.Vec{}, m),
		dynamo.NewParticle(r3.Add(spec.Center, off), r3.Vec{}, m),
	}
}
