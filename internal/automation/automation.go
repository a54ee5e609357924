// Package automation runs batches of experiments: scripted scenarios loaded
// from YAML, one-parameter sweeps and seed trials.
package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/san-kum/pmsim/internal/config"
	"github.com/san-kum/pmsim/internal/dynamo"
	"github.com/san-kum/pmsim/internal/experiment"
	"github.com/san-kum/pmsim/internal/metrics"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// Scenario is a named set of runs sharing one base configuration.
type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Preset      string    `yaml:"preset"`
	Runs        []Variant `yaml:"runs"`
}

// Variant overrides the base configuration. Zero values keep the base.
type Variant struct {
	Name       string  `yaml:"name"`
	Solver     string  `yaml:"solver"`
	Boundary   string  `yaml:"boundary"`
	Figure     string  `yaml:"figure"`
	Dt         float64 `yaml:"dt"`
	Iterations int     `yaml:"relaxation_iterations"`
	Workers    int     `yaml:"workers"`
	Count      int     `yaml:"count"`
	Seed       int64   `yaml:"seed"`
	Ticks      int     `yaml:"ticks"`
	Grid       int     `yaml:"grid"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(sc.Runs) == 0 {
		return nil, fmt.Errorf("%w: scenario %q has no runs", dynamo.ErrInvalidConfig, sc.Name)
	}
	return &sc, nil
}

func (v Variant) apply(cfg *config.Config) {
	if v.Solver != "" {
		cfg.Solver = v.Solver
	}
	if v.Boundary != "" {
		cfg.Boundary = v.Boundary
	}
	if v.Figure != "" {
		cfg.Figure.Name = v.Figure
	}
	if v.Dt != 0 {
		cfg.Dt = v.Dt
	}
	if v.Iterations != 0 {
		cfg.RelaxationIterations = v.Iterations
	}
	if v.Workers != 0 {
		cfg.Workers = v.Workers
	}
	if v.Count != 0 {
		cfg.Figure.Count = v.Count
	}
	if v.Seed != 0 {
		cfg.Figure.Seed = v.Seed
	}
	if v.Ticks != 0 {
		cfg.Run.Ticks = v.Ticks
	}
	if v.Grid != 0 {
		cfg.Grid = config.GridConfig{X: v.Grid, Y: v.Grid, Z: v.Grid}
	}
}

// Configs expands the scenario into one validated configuration per run.
func (s *Scenario) Configs() ([]*config.Config, error) {
	base := config.DefaultConfig()
	if s.Preset != "" {
		if base = config.GetPreset(s.Preset); base == nil {
			return nil, fmt.Errorf("%w: unknown preset %q", dynamo.ErrInvalidConfig, s.Preset)
		}
	}
	cfgs := make([]*config.Config, len(s.Runs))
	for i, v := range s.Runs {
		cfg := base.Clone()
		v.apply(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("run %d (%s): %w", i, v.Name, err)
		}
		cfgs[i] = cfg
	}
	return cfgs, nil
}

// Outcome pairs a run name with its result.
type Outcome struct {
	Name   string
	Result *experiment.Result
}

// RunScenario runs every variant concurrently.
func RunScenario(ctx context.Context, s *Scenario, opts ...experiment.Option) ([]Outcome, error) {
	cfgs, err := s.Configs()
	if err != nil {
		return nil, err
	}
	results, err := experiment.RunBatch(ctx, cfgs, opts...)
	out := make([]Outcome, len(results))
	for i, r := range results {
		name := s.Runs[i].Name
		if name == "" {
			name = fmt.Sprintf("run-%d", i)
		}
		out[i] = Outcome{Name: name, Result: r}
	}
	return out, err
}

// Sweep parameters.
const (
	ParamDt         = "dt"
	ParamG          = "g"
	ParamIterations = "relaxation_iterations"
	ParamCount      = "count"
	ParamGrid       = "grid"
)

// ParameterSweep varies one parameter evenly between Min and Max.
type ParameterSweep struct {
	Base  *config.Config
	Param string
	Min   float64
	Max   float64
	Steps int
}

// SweepResult holds the final metrics of one sweep point.
type SweepResult struct {
	Value         float64
	MeanRadius    float64
	RadiusDrift   float64
	KineticEnergy float64
	Population    int
}

// Configs returns one configuration per sweep point.
func (p *ParameterSweep) Configs() ([]float64, []*config.Config, error) {
	if p.Steps < 2 {
		return nil, nil, fmt.Errorf("%w: a sweep needs at least 2 steps", dynamo.ErrInvalidConfig)
	}
	values := floats.Span(make([]float64, p.Steps), p.Min, p.Max)
	cfgs := make([]*config.Config, p.Steps)
	for i, v := range values {
		cfg := p.Base.Clone()
		switch strings.ToLower(p.Param) {
		case ParamDt:
			cfg.Dt = v
		case ParamG:
			cfg.G = v
		case ParamIterations:
			cfg.RelaxationIterations = int(math.Round(v))
		case ParamCount:
			cfg.Figure.Count = int(math.Round(v))
		case ParamGrid:
			n := int(math.Round(v))
			cfg.Grid = config.GridConfig{X: n, Y: n, Z: n}
		default:
			return nil, nil, fmt.Errorf("%w: cannot sweep %q", dynamo.ErrInvalidConfig, p.Param)
		}
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("%s=%g: %w", p.Param, v, err)
		}
		cfgs[i] = cfg
	}
	return values, cfgs, nil
}

func RunSweep(ctx context.Context, p *ParameterSweep, opts ...experiment.Option) ([]SweepResult, error) {
	values, cfgs, err := p.Configs()
	if err != nil {
		return nil, err
	}
	results, err := experiment.RunBatch(ctx, cfgs, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]SweepResult, len(results))
	for i, r := range results {
		out[i] = SweepResult{
			Value:         values[i],
			MeanRadius:    r.Final[metrics.NameMeanRadius],
			RadiusDrift:   r.Final[metrics.NameRadiusDrift],
			KineticEnergy: r.Final[metrics.NameKineticEnergy],
			Population:    int(r.Final[metrics.NamePopulation]),
		}
	}
	return out, nil
}

// Best returns the sweep point with the lowest score.
func Best(results []SweepResult, score func(SweepResult) float64) (SweepResult, bool) {
	best := math.Inf(1)
	var out SweepResult
	found := false
	for _, r := range results {
		v := score(r)
		if math.IsNaN(v) || v >= best {
			continue
		}
		best, out, found = v, r, true
	}
	return out, found
}

// MonteCarloConfig reruns Base with random figure seeds.
type MonteCarloConfig struct {
	Base   *config.Config
	Trials int
	// Seed drives the seed draw. 0 uses the clock.
	Seed int64
}

type MonteCarloResult struct {
	TrialID     int
	FigureSeed  int64
	RadiusDrift float64
	Population  int
}

func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, opts ...experiment.Option) ([]MonteCarloResult, error) {
	if mc.Trials < 1 {
		return nil, fmt.Errorf("%w: need at least one trial", dynamo.ErrInvalidConfig)
	}
	rng := rand.New(rand.NewSource(mc.Seed))
	if mc.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	cfgs := make([]*config.Config, mc.Trials)
	seeds := make([]int64, mc.Trials)
	for i := range cfgs {
		seeds[i] = rng.Int63()
		cfg := mc.Base.Clone()
		cfg.Figure.Seed = seeds[i]
		cfgs[i] = cfg
	}
	results, err := experiment.RunBatch(ctx, cfgs, opts...)
	if err != nil {
		return nil, err
	}
	out := make([]MonteCarloResult, len(results))
	for i, r := range results {
		out[i] = MonteCarloResult{
			TrialID:     i,
			FigureSeed:  seeds[i],
			RadiusDrift: r.Final[metrics.NameRadiusDrift],
			Population:  int(r.Final[metrics.NamePopulation]),
		}
	}
	return out, nil
}

// MonteCarloStats counts trials whose radius drift stayed within limit.
func MonteCarloStats(results []MonteCarloResult, limit float64) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.RadiusDrift <= limit {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return stableCount, unstableCount
}
