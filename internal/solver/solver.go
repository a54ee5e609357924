package solver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/mesh"
)

// Solver computes m.Potential from m.Mass for gravitational constant g.
type Solver interface {
	Name() string
	Solve(m *mesh.Mesh, g float64)
}

// Params carries the tunables a factory may use.
type Params struct {
	Iterations int
	Workers    int
}

type Factory func(Params) Solver

type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in strategies.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}

	r.Register(RelaxationName, func(p Params) Solver { return NewRelaxation(p.Iterations, p.Workers) })
	r.Register(SpectralName, func(p Params) Solver { return NewSpectral(p.Workers) })

	return r
}

// Register adds or replaces a factory. Names are case-insensitive.
func (r *Registry) Register(name string, f Factory) {
	r.factories[strings.ToLower(name)] = f
}

func (r *Registry) Get(name string, p Params) (Solver, error) {
	fn, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %s)", dynamo.ErrUnknownSolver, name, strings.Join(r.Names(), ", "))
	}
	return fn(p), nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.factories[strings.ToLower(name)]
	return ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
