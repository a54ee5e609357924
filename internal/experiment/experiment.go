// Package experiment runs a configured particle-mesh scenario end to end:
// figure generation, orbit initialization, the tick loop, metrics and
// persistence.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/pmsim/internal/config"
	"github.com/san-kum/pmsim/internal/figures"
	"github.com/san-kum/pmsim/internal/metrics"
	"github.com/san-kum/pmsim/internal/orbit"
	"github.com/san-kum/pmsim/internal/sim"
	"github.com/san-kum/pmsim/internal/storage"
)

// Result is what a finished run reports.
type Result struct {
	RunID   string
	Ticks   int
	Wall    time.Duration
	Orbits  orbit.Stats
	Samples []metrics.Sample
	Final   map[string]float64
	Perf    PerfStats
}

type Option func(*Experiment)

// WithStore persists the run. Without a store nothing touches the disk.
func WithStore(st *storage.Store) Option { return func(e *Experiment) { e.store = st } }

func WithLogger(l *slog.Logger) Option { return func(e *Experiment) { e.logger = l } }

func WithMetrics(set *metrics.Set) Option { return func(e *Experiment) { e.metrics = set } }

// WithObserver adds a callback run after every tick, after metrics are taken.
func WithObserver(o sim.Observer) Option { return func(e *Experiment) { e.observer = o } }

func WithFigures(r *figures.Registry) Option { return func(e *Experiment) { e.figures = r } }

type Experiment struct {
	cfg      *config.Config
	sim      *sim.Simulation
	figures  *figures.Registry
	metrics  *metrics.Set
	store    *storage.Store
	logger   *slog.Logger
	observer sim.Observer
	perf     *PerfCollector
	orbits   orbit.Stats
}

func New(cfg *config.Config, opts ...Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Experiment{cfg: cfg, perf: NewPerfCollector(60)}
	for _, opt := range opts {
		opt(e)
	}
	if e.figures == nil {
		e.figures = figures.NewRegistry()
	}
	if e.metrics == nil {
		e.metrics = metrics.Default()
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// Setup builds the simulation and populates it with the configured figure.
// The figure centre is snapped to the nearest cell centre so symmetric
// figures deposit symmetrically.
func (e *Experiment) Setup() error {
	sc, err := e.cfg.SimConfig()
	if err != nil {
		return err
	}
	s, err := sim.New(sc)
	if err != nil {
		return err
	}
	spec := e.cfg.FigureSpec()
	m := s.Mesh()
	spec.Center = m.CellCenter(m.DepositCell(spec.Center))

	ps, err := e.figures.Generate(e.cfg.Figure.Name, spec)
	if err != nil {
		return err
	}
	s.InitSimulation(ps)

	if e.cfg.OrbitInit {
		e.orbits, err = s.InitOrbits(e.cfg.Solver)
		if err != nil {
			return fmt.Errorf("initializing orbits: %w", err)
		}
		if e.orbits.Repulsive > 0 {
			e.logger.Warn("particles without attractive radial force", "count", e.orbits.Repulsive)
		}
	}
	e.sim = s
	return nil
}

// Simulation returns the simulation built by Setup.
func (e *Experiment) Simulation() *sim.Simulation { return e.sim }

func (e *Experiment) Config() *config.Config { return e.cfg }

// Run executes the configured number of ticks. Setup is called when it has
// not been. The partial result is returned alongside any error.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.sim == nil {
		if err := e.Setup(); err != nil {
			return nil, err
		}
	}
	cfg := e.cfg
	log := e.logger.With("figure", cfg.Figure.Name, "solver", cfg.Solver)

	var run *storage.Run
	if e.store != nil {
		var err error
		run, err = e.store.Create(e.metadata())
		if err != nil {
			return nil, err
		}
		defer run.Close()
	}

	res := &Result{Orbits: e.orbits}
	if run != nil {
		res.RunID = run.ID()
	}
	log.Info("run started",
		"run", res.RunID,
		"particles", e.sim.Len(),
		"ticks", cfg.Run.Ticks,
		"orbiting", e.orbits.Orbiting,
	)

	e.metrics.Reset()
	e.metrics.Observe(e.sim.Store())
	first := e.metrics.Sample(0, 0)
	res.Samples = append(res.Samples, first)
	if err := e.persist(run, first); err != nil {
		return res, err
	}

	start := time.Now()
	observe := func(s *sim.Simulation) error {
		timings := s.LastTimings()
		e.perf.Record(timings)
		e.metrics.Observe(s.Store())
		sample := e.metrics.Sample(s.Tick(), s.Time())
		sample.TickMicros = timings.Total().Microseconds()
		res.Samples = append(res.Samples, sample)
		if err := e.persist(run, sample); err != nil {
			return err
		}
		if every := cfg.Run.SnapshotEvery; run != nil && every > 0 && s.Tick()%every == 0 {
			if err := run.WriteSnapshot(s.Tick(), s.Store()); err != nil {
				return err
			}
		}
		if every := cfg.Run.LogEvery; every > 0 && s.Tick()%every == 0 {
			log.Info("tick",
				"tick", s.Tick(),
				"population", sample.Population,
				"mean_radius", sample.MeanRadius,
				"kinetic_energy", sample.KineticEnergy,
				"timings", timings,
			)
		}
		if e.observer != nil {
			return e.observer(s)
		}
		return nil
	}

	runErr := e.sim.Run(ctx, cfg.Run.Ticks, cfg.Solver, observe)
	res.Ticks = e.sim.Tick()
	res.Wall = time.Since(start)
	res.Final = e.metrics.Values()
	res.Perf = e.perf.Stats()

	if run != nil {
		if err := run.Finish(res.Ticks, res.Wall, res.Final, runErr); err != nil {
			log.Error("failed to write metadata", "error", err)
		}
	}

	if runErr != nil {
		log.Error("run failed", "tick", res.Ticks, "error", runErr)
		return res, runErr
	}
	log.Info("run finished",
		"ticks", res.Ticks,
		"wall_ms", res.Wall.Milliseconds(),
		"population", e.sim.Len(),
		"perf", res.Perf,
	)
	return res, nil
}

func (e *Experiment) persist(run *storage.Run, sample metrics.Sample) error {
	if run == nil {
		return nil
	}
	return run.WriteSample(sample)
}

func (e *Experiment) metadata() storage.RunMetadata {
	cfg := e.cfg
	return storage.RunMetadata{
		Figure:    cfg.Figure.Name,
		Solver:    cfg.Solver,
		Boundary:  cfg.Boundary,
		Seed:      cfg.Figure.Seed,
		Dt:        cfg.Dt,
		G:         cfg.G,
		Grid:      [3]int{cfg.Grid.X, cfg.Grid.Y, cfg.Grid.Z},
		Extent:    [3]float64{cfg.World.Width, cfg.World.Height, cfg.World.Depth},
		Particles: e.sim.Len(),
	}
}
