package dynamo

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	hooks      []PostStep
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		hooks:      make([]PostStep, 0),
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddHook(h PostStep)     { s.hooks = append(s.hooks, h) }
func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates x0 for cfg.Duration. Metrics and observers see the state at
// the start of every step; frames are recorded every cfg.SampleEvery steps
// plus the final state. On cancellation or divergence the partial result is
// returned together with the error.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dim := s.dyn.StateDim(); dim > 0 && len(x0) != dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x0), dim)
	}

	steps := cfg.Steps()
	every := cfg.SampleEvery
	if every == 0 {
		every = 1
	}
	result := &Result{
		Frames:  make([]State, 0, steps/every+2),
		Times:   make([]float64, 0, steps/every+2),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.Frames = append(result.Frames, x.Clone())
	result.Times = append(result.Times, t)

	initialEnergy := s.computeEnergy(x)

	var runErr error
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		newX := s.Advance(x, t, dt)

		if cfg.ValidateState && !newX.IsValid() {
			runErr = &SimulationError{Step: i, Time: t, Wrapped: ErrInvalidState}
			break
		}

		x = newX
		t = float64(i+1) * dt
		result.StepsTaken++

		if result.StepsTaken%every == 0 {
			result.Frames = append(result.Frames, x.Clone())
			result.Times = append(result.Times, t)
		}
	}

	if result.StepsTaken%every != 0 {
		result.Frames = append(result.Frames, x.Clone())
		result.Times = append(result.Times, t)
	}

	finalEnergy := s.computeEnergy(x)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, runErr
}

func (s *Simulator) computeEnergy(x State) float64 {
	if h, ok := s.dyn.(Hamiltonian); ok {
		return h.Energy(x)
	}
	return 0
}

// RunWithCallback steps the system until the duration elapses or the callback
// returns false. It does not record frames; the live view drives runs this way.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, float64) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	x := x0.Clone()
	steps := cfg.Steps()

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i) * cfg.Dt
		if !callback(x, t) {
			return nil
		}

		x = s.Advance(x, t, cfg.Dt)

		if cfg.ValidateState && !x.IsValid() {
			return &SimulationError{Step: i, Time: t, Wrapped: ErrInvalidState}
		}
	}

	return nil
}

// Advance takes one integration step from (x, t) and applies the post-step
// hooks. Callers that drive the loop themselves, such as the live view, use
// it instead of Run.
func (s *Simulator) Advance(x State, t, dt float64) State {
	next := s.integrator.Step(s.dyn, x, t, dt)
	for _, h := range s.hooks {
		h.AfterStep(next, t+dt)
	}
	return next
}
