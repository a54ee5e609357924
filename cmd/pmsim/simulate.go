package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/pmsim/internal/analysis"
	"github.com/san-kum/pmsim/internal/automation"
	"github.com/san-kum/pmsim/internal/config"
	"github.com/san-kum/pmsim/internal/experiment"
	"github.com/san-kum/pmsim/internal/metrics"
	"github.com/san-kum/pmsim/internal/solver"
	"github.com/san-kum/pmsim/internal/storage"
	"github.com/san-kum/pmsim/internal/viz"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []experiment.Option{experiment.WithLogger(slog.Default())}
	if !noSave {
		st := storage.New(runDir(cfg))
		if err := st.Init(); err != nil {
			return err
		}
		opts = append(opts, experiment.WithStore(st))
	}

	e, err := experiment.New(cfg, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s with %d particles (%s solver)...\n", cfg.Figure.Name, cfg.Figure.Count, cfg.Solver)
	res, err := e.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", res.Wall)
	if res.RunID != "" {
		fmt.Printf("run id: %s\n", res.RunID)
	}
	fmt.Printf("ticks: %d (%.1f ticks/s)\n", res.Ticks, res.Perf.TicksPerSecond)
	fmt.Printf("orbits: %d orbiting, %d centred, %d without attraction\n",
		res.Orbits.Orbiting, res.Orbits.Centered, res.Orbits.Repulsive)
	fmt.Println("\nmetrics:")
	printMetrics(res.Final)
	return nil
}

func printMetrics(values map[string]float64) {
	for _, name := range []string{
		metrics.NamePopulation, metrics.NameTotalMass, metrics.NameMeanRadius,
		metrics.NameRadiusSpread, metrics.NameKineticEnergy, metrics.NameRadiusDrift,
	} {
		if v, ok := values[name]; ok {
			fmt.Printf("  %s: %.6g\n", name, v)
		}
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	e, err := experiment.New(cfg, quietLogger())
	if err != nil {
		return err
	}
	m, err := viz.NewModel(e)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// compareSolvers sets up one experiment per solver from the same seed, checks
// how well their initial force fields agree and then runs both at once.
func compareSolvers(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	names := []string{solver.RelaxationName, solver.SpectralName}
	exps := make([]*experiment.Experiment, len(names))
	for i, name := range names {
		cfg := base.Clone()
		cfg.Solver = name
		// the initial potential is needed for the agreement check
		cfg.OrbitInit = true
		e, err := experiment.New(cfg, experiment.WithLogger(slog.Default()))
		if err != nil {
			return err
		}
		if err := e.Setup(); err != nil {
			return err
		}
		exps[i] = e
	}

	relax, spectral := exps[0].Simulation().Mesh(), exps[1].Simulation().Mesh()
	agree := analysis.GradientAgreement(relax, spectral, analysis.InteriorPoints(relax, 2))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := make([]*experiment.Result, len(exps))
	g, ctx := errgroup.WithContext(ctx)
	for i, e := range exps {
		i, e := i, e
		g.Go(func() error {
			res, err := e.Run(ctx)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("comparing solvers on %s (%d particles, %d ticks)\n\n", base.Figure.Name, base.Figure.Count, base.Run.Ticks)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tTICKS/S\tWALL\tPOPULATION\tMEAN RADIUS\tRADIUS DRIFT\tKINETIC")
	for i, res := range results {
		fmt.Fprintf(w, "%s\t%.1f\t%v\t%.0f\t%.3f\t%.4f\t%.4g\n",
			names[i],
			res.Perf.TicksPerSecond,
			res.Wall.Round(time.Millisecond),
			res.Final[metrics.NamePopulation],
			res.Final[metrics.NameMeanRadius],
			res.Final[metrics.NameRadiusDrift],
			res.Final[metrics.NameKineticEnergy],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\ninitial gradient agreement over %d cells:\n", agree.Points)
	fmt.Printf("  mean cosine: %.4f\n", agree.MeanCosine)
	fmt.Printf("  min cosine:  %.4f\n", agree.MinCosine)
	fmt.Printf("  scale:       %.4g\n", agree.Scale)
	fmt.Printf("  nrmse:       %.4f\n", agree.NormalizedRMSE)
	return nil
}

func benchSolvers(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	base.Run.Ticks = benchTicks
	base.Run.LogEvery = 0

	fmt.Printf("benchmarking %s with %d particles on a %dx%dx%d grid\n\n",
		base.Figure.Name, base.Figure.Count, base.Grid.X, base.Grid.Y, base.Grid.Z)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOLVER\tWORKERS\tTICKS\tTIME\tTICKS/SEC\tDEPOSIT\tSOLVE\tINTEGRATE")

	for _, name := range []string{solver.RelaxationName, solver.SpectralName} {
		for _, n := range benchWorkers {
			cfg := base.Clone()
			cfg.Solver = name
			cfg.Workers = n
			e, err := experiment.New(cfg, quietLogger())
			if err != nil {
				return err
			}
			res, err := e.Run(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%v\t%.1f\t%v\t%v\t%v\n",
				name, workerLabel(n), res.Ticks, res.Wall.Round(time.Millisecond),
				float64(res.Ticks)/res.Wall.Seconds(),
				res.Perf.Phases.Deposit, res.Perf.Phases.Solve, res.Perf.Phases.Integrate)
		}
	}
	return w.Flush()
}

func workerLabel(n int) string {
	if n <= 0 {
		return "all"
	}
	return fmt.Sprint(n)
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	opts := []experiment.Option{experiment.WithLogger(slog.Default())}
	if !noSave {
		st := storage.New(runDir(nil))
		if err := st.Init(); err != nil {
			return err
		}
		opts = append(opts, experiment.WithStore(st))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running scenario %s (%d runs)\n\n", sc.Name, len(sc.Runs))
	outcomes, err := automation.RunScenario(ctx, sc, opts...)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRUN ID\tTICKS\tTICKS/S\tMEAN RADIUS\tRADIUS DRIFT")
	for _, o := range outcomes {
		r := o.Result
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%.3f\t%.4f\n",
			o.Name, r.RunID, r.Ticks, r.Perf.TicksPerSecond,
			r.Final[metrics.NameMeanRadius], r.Final[metrics.NameRadiusDrift])
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	p := &automation.ParameterSweep{Base: cfg, Param: sweepParam, Min: sweepMin, Max: sweepMax, Steps: sweepSteps}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s from %g to %g (%d points)\n\n", sweepParam, sweepMin, sweepMax, sweepSteps)
	results, err := automation.RunSweep(ctx, p, experiment.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tPOPULATION\tMEAN RADIUS\tRADIUS DRIFT\tKINETIC ENERGY")
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%d\t%.3f\t%.4f\t%.4g\n",
			r.Value, r.Population, r.MeanRadius, r.RadiusDrift, r.KineticEnergy)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if best, ok := automation.Best(results, func(r automation.SweepResult) float64 {
		return math.Abs(r.RadiusDrift)
	}); ok {
		fmt.Printf("\nsmallest radius drift at %s=%g\n", sweepParam, best.Value)
	}
	return nil
}
