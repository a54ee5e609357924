// Package metrics computes per-tick observables of a particle population.
package metrics

import "github.com/san-kum/pmsim/internal/particles"

// Metric accumulates one observable across ticks.
type Metric interface {
	Name() string
	Observe(s *particles.Store)
	Value() float64
	Reset()
}

// Set observes several metrics together.
type Set struct {
	metrics []Metric
}

func NewSet(ms ...Metric) *Set { return &Set{metrics: ms} }

// Default returns the metrics every run records.
func Default() *Set {
	return NewSet(
		NewPopulation(),
		NewTotalMass(),
		NewMeanRadius(),
		NewRadiusSpread(),
		NewKineticEnergy(),
		NewRadiusDrift(),
	)
}

func (s *Set) Add(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Set) Observe(st *particles.Store) {
	for _, m := range s.metrics {
		m.Observe(st)
	}
}

func (s *Set) Reset() {
	for _, m := range s.metrics {
		m.Reset()
	}
}

func (s *Set) Values() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Get returns the metric with the given name, or nil.
func (s *Set) Get(name string) Metric {
	for _, m := range s.metrics {
		if m.Name() == name {
			return m
		}
	}
	return nil
}
