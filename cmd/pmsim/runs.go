package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pmsim/internal/analysis"
	"github.com/san-kum/pmsim/internal/config"
	"github.com/san-kum/pmsim/internal/export"
	"github.com/san-kum/pmsim/internal/figures"
	"github.com/san-kum/pmsim/internal/metrics"
	"github.com/san-kum/pmsim/internal/storage"
	"github.com/san-kum/pmsim/internal/viz"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/spatial/r3"
)

// openStore resolves the run directory, reading --config when given.
func openStore() (*storage.Store, error) {
	var cfg *config.Config
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	return storage.New(runDir(cfg)), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFIGURE\tSOLVER\tTIME\tPARTICLES\tTICKS\tDT\tSTATUS")
	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.4g\t%s\n",
			run.ID,
			run.Figure,
			run.Solver,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Particles,
			run.Ticks,
			run.Dt,
			status,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.Store, *storage.RunMetadata, []metrics.Sample, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, nil, err
	}
	meta, err := st.LoadMetadata(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	samples, err := st.LoadMetrics(runID)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, nil, fmt.Errorf("no data to plot")
	}
	return st, meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	_, meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("figure: %s, solver: %s, boundary: %s\n", meta.Figure, meta.Solver, meta.Boundary)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		value   func(metrics.Sample) float64
	}{
		{"mean radius", func(s metrics.Sample) float64 { return s.MeanRadius }},
		{"radius drift", func(s metrics.Sample) float64 { return s.RadiusDrift }},
		{"kinetic energy", func(s metrics.Sample) float64 { return s.KineticEnergy }},
		{"population", func(s metrics.Sample) float64 { return float64(s.Population) }},
	}
	for _, sr := range series {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = sr.value(s)
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sr.caption),
		))
		fmt.Println()
	}

	if svgPath != "" {
		radius := make([]float64, len(samples))
		for i, s := range samples {
			radius[i] = s.MeanRadius
		}
		if err := writeSVG(svgPath, export.SeriesToSVG(radius, 800, 300, "#00ccff")); err != nil {
			return err
		}
	}
	return nil
}

func writeSVG(path, svg string) error {
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	_, meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	data := make([]float64, len(samples))
	for i, s := range samples {
		data[i] = s.MeanRadius
	}
	ps := analysis.PowerSpectrum(data)
	if len(ps) < 2 {
		return fmt.Errorf("run %s is too short for frequency analysis", meta.ID)
	}

	fmt.Printf("frequency analysis: %s\n\n", meta.ID)
	fmt.Println(asciigraph.Plot(ps,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (mean radius)"),
	))
	fmt.Println()

	if period := analysis.DominantPeriod(data, meta.Dt); period > 0 {
		fmt.Printf("dominant period: %.4g time units (%.1f ticks)\n", period, period/meta.Dt)
	} else {
		fmt.Println("no oscillation found")
	}
	return nil
}

func showSnapshot(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st, err := openStore()
	if err != nil {
		return err
	}
	meta, err := st.LoadMetadata(runID)
	if err != nil {
		return err
	}
	tick := snapshotTick
	if tick < 0 {
		if len(meta.Snapshots) == 0 {
			return fmt.Errorf("run %s has no snapshots (use --snapshot-every)", runID)
		}
		tick = meta.Snapshots[len(meta.Snapshots)-1]
	}
	rows, err := st.LoadSnapshot(runID, tick)
	if err != nil {
		return err
	}
	ps := storage.SnapshotStore(rows)
	com, total := ps.CenterOfMass()

	fmt.Printf("run: %s, tick %d\n", runID, tick)
	fmt.Printf("particles: %d\n", ps.Len())
	fmt.Printf("total mass: %.6g\n", total)
	fmt.Printf("center of mass: (%.3f, %.3f, %.3f)\n\n", com.X, com.Y, com.Z)

	prof := analysis.RadialProfile(ps, com, 10, 0)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RADIUS\tCOUNT\tMASS\tDENSITY")
	for i := range prof.Count {
		fmt.Fprintf(w, "%.1f-%.1f\t%.0f\t%.4g\t%.4g\n",
			prof.Edges[i], prof.Edges[i+1], prof.Count[i], prof.Mass[i], prof.Density[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nmean radius %.3f, spread %.3f\n", prof.Mean, prof.StdDev)

	if svgPath != "" {
		extent := r3.Vec{X: meta.Extent[0], Y: meta.Extent[1], Z: meta.Extent[2]}
		return writeSVG(svgPath, export.SnapshotToSVG(ps, viz.NewCamera(extent), 800, 800))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tFIGURE\tCOUNT\tSOLVER\tGRID\tTICKS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%dx%dx%d\t%d\n",
			name, cfg.Figure.Name, cfg.Figure.Count, cfg.Solver,
			cfg.Grid.X, cfg.Grid.Y, cfg.Grid.Z, cfg.Run.Ticks)
	}
	return w.Flush()
}

func listFigures(cmd *cobra.Command, args []string) error {
	names := figures.NewRegistry().Names()
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %s\n", n)
	}
	return nil
}
