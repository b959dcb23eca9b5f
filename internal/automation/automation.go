// Package automation runs batches of md experiments: YAML scenarios,
// parameter sweeps and seed replicas.
package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/simscat/internal/analysis"
	"github.com/san-kum/simscat/internal/config"
	"github.com/san-kum/simscat/internal/experiment"
	"github.com/san-kum/simscat/internal/logging"
	"gopkg.in/yaml.v3"
)

var ErrEmptyBatch = errors.New("automation: nothing to run")

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the default config) and overrides
// the fields that are set.
type ScenarioStep struct {
	Preset      string   `yaml:"preset"`
	Name        string   `yaml:"name"`
	Integrator  string   `yaml:"integrator"`
	Thermostat  string   `yaml:"thermostat"`
	Particles   int      `yaml:"particles"`
	Temperature *float64 `yaml:"temperature"`
	Density     float64  `yaml:"density"`
	Dt          float64  `yaml:"dt"`
	Duration    float64  `yaml:"duration"`
	Seed        *int64   `yaml:"seed"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

// Config resolves the step into a validated run config.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if s.Name != "" {
		cfg.Name = s.Name
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Thermostat != "" {
		cfg.Thermostat.Name = s.Thermostat
	}
	if s.Particles > 0 {
		cfg.Particles = s.Particles
	}
	if s.Temperature != nil {
		cfg.Temperature = *s.Temperature
	}
	if s.Density > 0 {
		cfg.Density = s.Density
		cfg.BoxLength = 0
	}
	if s.Dt > 0 {
		cfg.Dt = s.Dt
	}
	if s.Duration > 0 {
		cfg.Duration = s.Duration
	}
	if s.Seed != nil {
		cfg.Seed = *s.Seed
	}
	return cfg, cfg.Validate()
}

// Sink receives each finished run, for example to store it.
type Sink func(i int, out *experiment.Output) error

// RunScenario executes the steps in order and stops at the first failure.
func RunScenario(ctx context.Context, sc *Scenario, log *logging.Logger, sink Sink) ([]*experiment.Output, error) {
	if len(sc.Steps) == 0 {
		return nil, ErrEmptyBatch
	}
	outputs := make([]*experiment.Output, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		cfg, err := step.Config()
		if err != nil {
			return outputs, fmt.Errorf("step %d: %w", i+1, err)
		}
		log.Info("scenario step", "scenario", sc.Name, "step", i+1, "of", len(sc.Steps), "name", cfg.Name)

		out, err := experiment.Run(ctx, cfg)
		if err != nil {
			return outputs, fmt.Errorf("step %d: %w", i+1, err)
		}
		if sink != nil {
			if err := sink(i, out); err != nil {
				return outputs, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// Sweep varies one config parameter over an evenly spaced range.
type Sweep struct {
	Base  *config.Config
	Param string
	Min   float64
	Max   float64
	N     int
}

// SweepParams lists the parameters a Sweep can vary.
var SweepParams = []string{"temperature", "density", "dt", "cutoff"}

func setParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "temperature":
		cfg.Temperature = v
	case "density":
		cfg.Density = v
		cfg.BoxLength = 0
	case "dt":
		cfg.Dt = v
	case "cutoff":
		cfg.Cutoff = v
	default:
		return fmt.Errorf("cannot sweep %q (have %v)", name, SweepParams)
	}
	return nil
}

// Point summarises one run of a batch.
type Point struct {
	Value           float64
	Seed            int64
	Drift           float64
	MeanTemperature float64
	MeanPressure    float64
	MeanPotential   float64
	Diffusion       float64
	Err             error
}

func (p Point) Stable() bool { return p.Err == nil }

func summarise(out *experiment.Output) Point {
	p := Point{
		Seed:            out.Config.Seed,
		Drift:           out.Drift,
		MeanTemperature: out.Metrics["mean_temperature"],
		MeanPressure:    out.Metrics["mean_pressure"],
		MeanPotential:   out.Metrics["mean_potential"],
		Diffusion:       math.NaN(),
	}
	n := analysis.EvenlySpaced(out.Times)
	msd, err := analysis.MSD(out.Positions()[:n], out.System.Box)
	if err == nil {
		if d, err := analysis.DiffusionCoefficient(msd, relative(out.Times[:n])); err == nil {
			p.Diffusion = d
		}
	}
	return p
}

func relative(times []float64) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = t - times[0]
	}
	return out
}

// RunSweep executes the sweep. A run that fails is recorded in its Point
// and the sweep carries on; only cancellation stops it early.
func RunSweep(ctx context.Context, sw Sweep, log *logging.Logger) ([]Point, error) {
	if sw.N < 1 {
		return nil, ErrEmptyBatch
	}
	if err := setParam(sw.Base.Clone(), sw.Param, sw.Min); err != nil {
		return nil, err
	}

	step := 0.0
	if sw.N > 1 {
		step = (sw.Max - sw.Min) / float64(sw.N-1)
	}
	points := make([]Point, 0, sw.N)
	for i := 0; i < sw.N; i++ {
		v := sw.Min + float64(i)*step
		cfg := sw.Base.Clone()
		_ = setParam(cfg, sw.Param, v)
		cfg.Name = fmt.Sprintf("%s-%s-%g", sw.Base.Name, sw.Param, v)

		out, err := experiment.Run(ctx, cfg)
		if ctx.Err() != nil {
			return points, ctx.Err()
		}
		p := Point{Value: v, Seed: cfg.Seed, Err: err}
		if err == nil {
			p = summarise(out)
			p.Value = v
		}
		points = append(points, p)
		log.Debug("sweep point", "param", sw.Param, "value", v, "index", i+1, "of", sw.N, "error", err)
	}
	return points, nil
}

// RunReplicas repeats base with seeds base.Seed, base.Seed+1, ... and
// returns one Point per replica.
func RunReplicas(ctx context.Context, base *config.Config, n int, log *logging.Logger) ([]Point, error) {
	if n < 1 {
		return nil, ErrEmptyBatch
	}
	points := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		cfg := base.Clone()
		cfg.Seed = base.Seed + int64(i)

		out, err := experiment.Run(ctx, cfg)
		if ctx.Err() != nil {
			return points, ctx.Err()
		}
		p := Point{Seed: cfg.Seed, Err: err}
		if err == nil {
			p = summarise(out)
		}
		points = append(points, p)
		log.Debug("replica done", "seed", cfg.Seed, "error", err)
	}
	return points, nil
}

// ReplicaStats summarises the stable replicas' mean temperature, mean
// pressure and energy drift.
func ReplicaStats(points []Point) (temperature, pressure, drift analysis.Summary, stable int) {
	var ts, ps, ds []float64
	for _, p := range points {
		if !p.Stable() {
			continue
		}
		stable++
		ts = append(ts, p.MeanTemperature)
		ps = append(ps, p.MeanPressure)
		ds = append(ds, p.Drift)
	}
	return analysis.Summarize(ts), analysis.Summarize(ps), analysis.Summarize(ds), stable
}
