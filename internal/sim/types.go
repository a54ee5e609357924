package sim

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config is everything the core needs to build a simulation. Loading it
// from disk is the config package's job.
type Config struct {
	Grid       mesh.Dims
	Extent     r3.Vec
	G          float64
	Dt         float64
	Iterations int
	Boundary   dynamo.BoundaryPolicy
	Workers    int

	// ValidateState makes Run check every particle for NaN/Inf after each tick.
	ValidateState bool
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", dynamo.ErrInvalidConfig, c.Dt)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("%w: relaxation iterations must not be negative, got %d", dynamo.ErrInvalidConfig, c.Iterations)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", dynamo.ErrInvalidConfig, c.Workers)
	}
	if _, err := dynamo.ParseBoundaryPolicy(string(c.Boundary)); err != nil {
		return err
	}
	return nil
}

// Phase names used in PhaseTimings.
const (
	PhaseDeposit   = "deposit"
	PhaseSolve     = "solve"
	PhaseIntegrate = "integrate"
	PhaseCompact   = "compact"
)

// PhaseTimings records how long each phase of the last tick took.
type PhaseTimings struct {
	Deposit   time.Duration
	Solve     time.Duration
	Integrate time.Duration
	Compact   time.Duration
}

func (p PhaseTimings) Total() time.Duration {
	return p.Deposit + p.Solve + p.Integrate + p.Compact
}

// LogValue implements slog.LogValuer for structured logging.
func (p PhaseTimings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64(PhaseDeposit+"_us", p.Deposit.Microseconds()),
		slog.Int64(PhaseSolve+"_us", p.Solve.Microseconds()),
		slog.Int64(PhaseIntegrate+"_us", p.Integrate.Microseconds()),
		slog.Int64(PhaseCompact+"_us", p.Compact.Microseconds()),
		slog.Int64("total_us", p.Total().Microseconds()),
	)
}

// Observer is called by Run after every completed tick.
type Observer func(s *Simulation) error
