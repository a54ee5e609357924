package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrDimensionMismatch indicates parallel arrays of unequal length.
	ErrDimensionMismatch = errors.New("pmsim: dimension mismatch between particle arrays")

	// ErrIndexOutOfRange indicates a particle index outside the store.
	ErrIndexOutOfRange = errors.New("pmsim: particle index out of range")

	// ErrInvalidConfig indicates a configuration value outside its valid range.
	ErrInvalidConfig = errors.New("pmsim: invalid configuration")

	// ErrUnknownSolver indicates a solver name missing from the registry.
	ErrUnknownSolver = errors.New("pmsim: unknown solver")

	// ErrUnknownFigure indicates a figure name missing from the registry.
	ErrUnknownFigure = errors.New("pmsim: unknown figure")

	// ErrEmptyPopulation indicates an operation that needs at least one particle.
	ErrEmptyPopulation = errors.New("pmsim: empty particle population")

	// ErrContextCanceled indicates the run was interrupted between ticks.
	ErrContextCanceled = errors.New("pmsim: simulation canceled by context")

	// ErrInvalidState indicates NaN or Inf in particle state.
	ErrInvalidState = errors.New("pmsim: invalid state (NaN or Inf detected)")
)

// SimulationError wraps an error with the tick it was raised on.
type SimulationError struct {
	Tick    int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("tick %d (t=%g): %v", e.Tick, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
