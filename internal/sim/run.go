package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/pmsim/internal/dynamo"
)

// Run advances ticks ticks with the named solver. Cancellation is checked
// between ticks only; a tick in flight always completes. observe may be nil.
func (s *Simulation) Run(ctx context.Context, ticks int, solverName string, observe Observer) error {
	if _, err := s.solver(solverName); err != nil {
		return err
	}

	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			return s.wrap(fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err()))
		default:
		}

		if err := s.StepWith(solverName); err != nil {
			return s.wrap(err)
		}

		if s.cfg.ValidateState {
			if err := s.store.Validate(); err != nil {
				return s.wrap(err)
			}
		}

		if observe != nil {
			if err := observe(s); err != nil {
				return s.wrap(err)
			}
		}
	}
	return nil
}

func (s *Simulation) wrap(err error) error {
	return &dynamo.SimulationError{Tick: s.tick, Time: s.time, Wrapped: err}
}
