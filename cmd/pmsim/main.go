package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/pmsim/internal/config"
	"github.com/san-kum/pmsim/internal/experiment"
	"github.com/san-kum/pmsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	logLevel  string
	logFormat string

	configFile    string
	preset        string
	solverName    string
	boundary      string
	figureName    string
	ticks         int
	workers       int
	count         int
	seed          int64
	dt            float64
	snapshotEvery int
	logEvery      int
	noSave        bool

	benchTicks   int
	benchWorkers []int
	snapshotTick int
	svgPath      string

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
)

// main registers the commands and runs the root command. With no subcommand
// the preset launcher opens.
func main() {
	rootCmd := &cobra.Command{
		Use:   "pmsim",
		Short: "particle-mesh gravity simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(os.Stderr)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := tea.NewProgram(viz.NewLauncher(quietLogger()), tea.WithAltScreen()).Run()
			return err
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "run directory (default: run.output_dir from the config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "json or text")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its metrics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addScenarioFlags(runCmd)
	runCmd.Flags().IntVar(&snapshotEvery, "snapshot-every", 0, "write a particle snapshot every n ticks")
	runCmd.Flags().IntVar(&logEvery, "log-every", 50, "log a tick summary every n ticks")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addScenarioFlags(liveCmd)

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "run relaxation and spectral solvers on the same initial conditions",
		Args:  cobra.NoArgs,
		RunE:  compareSolvers,
	}
	addScenarioFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure ticks per second per solver and worker count",
		Args:  cobra.NoArgs,
		RunE:  benchSolvers,
	}
	addScenarioFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchTicks, "bench-ticks", 20, "ticks per measurement")
	benchCmd.Flags().IntSliceVar(&benchWorkers, "worker-counts", []int{1, 2, 4, 0}, "worker counts to try (0 = all cpus)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
	listCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the metrics of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of the mean radius",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "summarize a stored particle snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  showSnapshot,
	}
	snapshotCmd.Flags().IntVar(&snapshotTick, "tick", -1, "snapshot tick (default: latest)")
	snapshotCmd.Flags().StringVar(&svgPath, "svg", "", "also render the snapshot to an svg file")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also render the mean radius to an svg file")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every variant of a yaml scenario concurrently",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&noSave, "no-save", false, "do not persist the runs")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter and report the final metrics of each point",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addScenarioFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "dt", "parameter to vary (dt, g, relaxation_iterations, count, grid)")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.005, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.02, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 4, "number of points")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	figuresCmd := &cobra.Command{
		Use:   "figures",
		Short: "list initial condition figures",
		Args:  cobra.NoArgs,
		RunE:  listFigures,
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file to start from",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initConfigCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	for _, c := range []*cobra.Command{plotCmd, analyzeCmd, snapshotCmd, scenarioCmd} {
		c.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	}

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, benchCmd, scenarioCmd, sweepCmd, listCmd, plotCmd,
		analyzeCmd, snapshotCmd, presetsCmd, figuresCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addScenarioFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&solverName, "solver", config.DefaultSolver, "poisson solver (relaxation, spectral)")
	cmd.Flags().StringVar(&boundary, "boundary", string(config.DefaultBoundary), "boundary policy (drop, clamp, none)")
	cmd.Flags().StringVar(&figureName, "figure", config.DefaultFigure, "initial condition figure")
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines (0 = all cpus)")
	cmd.Flags().IntVar(&count, "count", config.DefaultCount, "particles in the figure")
	cmd.Flags().Int64Var(&seed, "seed", 1, "figure random seed")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
}

// loadConfig starts from the defaults, a preset or a config file (which
// overrides the preset) and then applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("solver") {
		cfg.Solver = solverName
	}
	if flags.Changed("boundary") {
		cfg.Boundary = boundary
	}
	if flags.Changed("figure") {
		cfg.Figure.Name = figureName
	}
	if flags.Changed("ticks") {
		cfg.Run.Ticks = ticks
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("count") {
		cfg.Figure.Count = count
	}
	if flags.Changed("seed") {
		cfg.Figure.Seed = seed
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Lookup("snapshot-every") != nil && flags.Changed("snapshot-every") {
		cfg.Run.SnapshotEvery = snapshotEvery
	}
	if flags.Lookup("log-every") != nil && flags.Changed("log-every") {
		cfg.Run.LogEvery = logEvery
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runDir picks --data over the configured output directory.
func runDir(cfg *config.Config) string {
	if dataDir != "" {
		return dataDir
	}
	if cfg != nil && cfg.Run.OutputDir != "" {
		return cfg.Run.OutputDir
	}
	return config.DefaultOutputDir
}

func setupLogging(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(logFormat) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "text":
		h = slog.NewTextHandler(w, opts)
	default:
		return fmt.Errorf("invalid --log-format %q: want json or text", logFormat)
	}
	slog.SetDefault(slog.New(h))
	return nil
}

// quietLogger keeps log lines from tearing the terminal UI.
func quietLogger() experiment.Option {
	return experiment.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
