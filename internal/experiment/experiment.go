package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/san-kum/simscat/internal/config"
	"github.com/san-kum/simscat/internal/dynamo"
	"github.com/san-kum/simscat/internal/md"
	"github.com/san-kum/simscat/internal/metrics"
	"github.com/san-kum/simscat/internal/thermostat"
)

// Experiment is one configured md run: the particle system, its initial
// state and a simulator with wrapping, thermostat and metrics attached.
type Experiment struct {
	cfg        *config.Config
	system     *md.System
	thermostat thermostat.Thermostat
	simulator  *dynamo.Simulator
	x0         dynamo.State
}

// Output is a finished run. Thermo[i] belongs to Frames[i].
type Output struct {
	Config  *config.Config
	System  *md.System
	Frames  []dynamo.State
	Times   []float64
	Thermo  []md.Thermo
	Metrics map[string]float64
	Drift   float64
	Steps   int
}

func New(cfg *config.Config, reg *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pair, err := cfg.Pair()
	if err != nil {
		return nil, err
	}

	box := md.Cubic(cfg.BoxLength)
	if cfg.BoxLength <= 0 {
		box = md.BoxForDensity(cfg.Particles, cfg.Density)
	}
	sys, err := md.NewSystem(cfg.Particles, cfg.Mass, pair, box, cfg.Cutoff, cfg.Shift)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	var pos []float64
	switch cfg.Init {
	case "random":
		pos, err = md.RandomPositions(cfg.Particles, box, cfg.MinDist, rng)
		if err != nil {
			return nil, err
		}
	case "fcc":
		pos = md.FCC(cfg.Particles, box)
	default:
		pos = md.Lattice(cfg.Particles, box)
	}
	vel := md.MaxwellBoltzmann(cfg.Particles, cfg.Mass, cfg.Temperature, rng)

	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	th, err := reg.GetThermostat(cfg.Thermostat.Name, sys, cfg.ThermostatParams())
	if err != nil {
		return nil, err
	}

	s := dynamo.New(sys, integ)
	s.AddHook(sys)
	s.AddHook(th)
	for _, m := range metrics.Default(sys) {
		s.AddMetric(m)
	}

	return &Experiment{
		cfg:        cfg,
		system:     sys,
		thermostat: th,
		simulator:  s,
		x0:         md.NewState(pos, vel),
	}, nil
}

func (e *Experiment) System() *md.System                { return e.system }
func (e *Experiment) Simulator() *dynamo.Simulator      { return e.simulator }
func (e *Experiment) InitialState() dynamo.State        { return e.x0.Clone() }
func (e *Experiment) Thermostat() thermostat.Thermostat { return e.thermostat }
func (e *Experiment) Config() *config.Config            { return e.cfg }

func (e *Experiment) SimConfig() dynamo.Config {
	return dynamo.Config{
		Dt:            e.cfg.Dt,
		Duration:      e.cfg.Duration,
		Seed:          e.cfg.Seed,
		SampleEvery:   e.cfg.SampleEvery,
		ValidateState: true,
	}
}

// Run integrates the experiment and evaluates the thermodynamics of every
// sampled frame. A cancelled or diverged run still returns what was
// sampled before the error.
func (e *Experiment) Run(ctx context.Context) (*Output, error) {
	res, err := e.simulator.Run(ctx, e.x0, e.SimConfig())
	if res == nil {
		return nil, err
	}
	out := &Output{
		Config:  e.cfg,
		System:  e.system,
		Frames:  res.Frames,
		Times:   res.Times,
		Thermo:  make([]md.Thermo, len(res.Frames)),
		Metrics: res.Metrics,
		Drift:   res.EnergyDrift,
		Steps:   res.StepsTaken,
	}
	for i, x := range res.Frames {
		out.Thermo[i] = e.system.Thermo(x)
	}
	if err != nil {
		return out, fmt.Errorf("run %s: %w", e.cfg.Name, err)
	}
	return out, nil
}

// Run builds and runs cfg with the default registry.
func Run(ctx context.Context, cfg *config.Config) (*Output, error) {
	exp, err := New(cfg, NewRegistry())
	if err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}

// Positions returns the coordinates of every frame.
func (o *Output) Positions() [][][3]float64 {
	out := make([][][3]float64, len(o.Frames))
	for i, x := range o.Frames {
		out[i] = o.System.Positions(x)
	}
	return out
}

func (o *Output) Velocities() [][][3]float64 {
	out := make([][][3]float64, len(o.Frames))
	for i, x := range o.Frames {
		out[i] = o.System.Velocities(x)
	}
	return out
}
