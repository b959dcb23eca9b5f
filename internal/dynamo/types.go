package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Sub returns s - other. Entries past the end of other are copied from s.
func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Positions returns the first half of a position/velocity split state.
// The returned slice aliases s.
func (s State) Positions() []float64 { return s[:len(s)/2] }

// Velocities returns the second half of a position/velocity split state.
// The returned slice aliases s.
func (s State) Velocities() []float64 { return s[len(s)/2:] }

type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// PostStep adjusts the freshly integrated state in place.
type PostStep interface {
	AfterStep(x State, t float64)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	Seed          int64
	SampleEvery   int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            2.0,
		Duration:      2000.0,
		SampleEvery:   10,
		ValidateState: true,
	}
}

// Steps is the number of integration steps the config asks for.
func (c Config) Steps() int {
	return int(math.Round(c.Duration / c.Dt))
}

func (c Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %g", ErrInvalidConfig, c.Duration)
	}
	if c.SampleEvery < 0 {
		return fmt.Errorf("%w: sample_every must not be negative, got %d", ErrInvalidConfig, c.SampleEvery)
	}
	return nil
}

// Result holds the sampled frames of a run. Frames[0] is always the initial
// state; Frames[len-1] is always the final state.
type Result struct {
	Frames      []State
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
}

// Final returns the last sampled frame, or nil for an empty result.
func (r *Result) Final() State {
	if r == nil || len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1]
}
