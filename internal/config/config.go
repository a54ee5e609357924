package config

import (
	"fmt"
	"os"

	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/figures"
	"github.com/san-kum/pmsim/internal/mesh"
	"github.com/san-kum/pmsim/internal/sim"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGrid       = 32
	DefaultWorldSize  = 1000.0
	DefaultG          = 1.0
	DefaultDt         = 0.01
	DefaultIterations = 60
	DefaultBoundary   = dynamo.BoundaryDrop
	DefaultSolver     = "spectral"
	DefaultFigure     = "shell"
	DefaultCount      = 2000
	DefaultCenterMass = 1e5
	DefaultTicks      = 200
	DefaultOutputDir  = "runs"
)

type Config struct {
	Grid                 GridConfig   `yaml:"grid"`
	World                WorldConfig  `yaml:"world"`
	G                    float64      `yaml:"g"`
	Dt                   float64      `yaml:"dt"`
	RelaxationIterations int          `yaml:"relaxation_iterations"`
	Boundary             string       `yaml:"boundary"`
	Solver               string       `yaml:"solver"`
	Workers              int          `yaml:"workers"`
	Figure               FigureConfig `yaml:"figure"`
	OrbitInit            bool         `yaml:"orbit_init"`
	Run                  RunConfig    `yaml:"run"`
}

type GridConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Depth  float64 `yaml:"depth"`
}

type FigureConfig struct {
	Name       string  `yaml:"name"`
	Count      int     `yaml:"count"`
	Seed       int64   `yaml:"seed"`
	CenterMass float64 `yaml:"center_mass"`
	MinRadius  float64 `yaml:"min_radius"`
	MaxRadius  float64 `yaml:"max_radius"`
	MassFrom   float64 `yaml:"mass_from"`
	MassUntil  float64 `yaml:"mass_until"`
	// Center defaults to the middle of the world when unset.
	Center *[3]float64 `yaml:"center,omitempty"`
}

type RunConfig struct {
	Ticks         int    `yaml:"ticks"`
	OutputDir     string `yaml:"output_dir"`
	SnapshotEvery int    `yaml:"snapshot_every"`
	LogEvery      int    `yaml:"log_every"`
	Validate      bool   `yaml:"validate"`
}

func DefaultConfig() *Config {
	return &Config{
		Grid:                 GridConfig{X: DefaultGrid, Y: DefaultGrid, Z: DefaultGrid},
		World:                WorldConfig{Width: DefaultWorldSize, Height: DefaultWorldSize, Depth: DefaultWorldSize},
		G:                    DefaultG,
		Dt:                   DefaultDt,
		RelaxationIterations: DefaultIterations,
		Boundary:             string(DefaultBoundary),
		Solver:               DefaultSolver,
		Figure: FigureConfig{
			Name:       DefaultFigure,
			Count:      DefaultCount,
			Seed:       1,
			CenterMass: DefaultCenterMass,
			MinRadius:  240,
			MaxRadius:  270,
			MassFrom:   1,
			MassUntil:  1.0001,
		},
		OrbitInit: true,
		Run: RunConfig{
			Ticks:     DefaultTicks,
			OutputDir: DefaultOutputDir,
			LogEvery:  50,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the values the core cannot work with. Every error wraps
// dynamo.ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: "+format, append([]any{dynamo.ErrInvalidConfig}, args...)...)
	}
	if c.Grid.X < mesh.MinDim || c.Grid.Y < mesh.MinDim || c.Grid.Z < mesh.MinDim {
		return invalid("grid %dx%dx%d needs at least %d cells per axis", c.Grid.X, c.Grid.Y, c.Grid.Z, mesh.MinDim)
	}
	if c.World.Width <= 0 || c.World.Height <= 0 || c.World.Depth <= 0 {
		return invalid("world extents must be positive")
	}
	if c.Dt <= 0 {
		return invalid("dt must be positive, got %g", c.Dt)
	}
	if c.RelaxationIterations < 0 {
		return invalid("relaxation_iterations must not be negative")
	}
	if c.Workers < 0 {
		return invalid("workers must not be negative")
	}
	if c.Figure.Count < 0 {
		return invalid("figure count must not be negative")
	}
	if c.Run.Ticks < 0 {
		return invalid("run ticks must not be negative")
	}
	if _, err := dynamo.ParseBoundaryPolicy(c.Boundary); err != nil {
		return err
	}
	return nil
}

// Extent is the world size as a vector.
func (c *Config) Extent() r3.Vec {
	return r3.Vec{X: c.World.Width, Y: c.World.Height, Z: c.World.Depth}
}

// SimConfig converts to the core's configuration.
func (c *Config) SimConfig() (sim.Config, error) {
	policy, err := dynamo.ParseBoundaryPolicy(c.Boundary)
	if err != nil {
		return sim.Config{}, err
	}
	return sim.Config{
		Grid:          mesh.Dims{X: c.Grid.X, Y: c.Grid.Y, Z: c.Grid.Z},
		Extent:        c.Extent(),
		G:             c.G,
		Dt:            c.Dt,
		Iterations:    c.RelaxationIterations,
		Boundary:      policy,
		Workers:       c.Workers,
		ValidateState: c.Run.Validate,
	}, nil
}

// FigureSpec builds the generator input. The figure is centred on the
// configured center, or on the world middle.
func (c *Config) FigureSpec() figures.Spec {
	center := r3.Scale(0.5, c.Extent())
	if c.Figure.Center != nil {
		center = r3.Vec{X: c.Figure.Center[0], Y: c.Figure.Center[1], Z: c.Figure.Center[2]}
	}
	return figures.Spec{
		Count:      c.Figure.Count,
		Seed:       c.Figure.Seed,
		Center:     center,
		CenterMass: c.Figure.CenterMass,
		MinRadius:  c.Figure.MinRadius,
		MaxRadius:  c.Figure.MaxRadius,
		MassFrom:   c.Figure.MassFrom,
		MassUntil:  c.Figure.MassUntil,
	}
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	if c.Figure.Center != nil {
		center := *c.Figure.Center
		cp.Figure.Center = &center
	}
	return &cp
}
