package thermostat

import (
	"fmt"
	"math"

	"github.com/san-kum/simscat/internal/dynamo"
	"github.com/san-kum/simscat/internal/md"
)

type Thermostat interface {
	dynamo.PostStep
	Name() string
}

// Tunable is implemented by thermostats with a temperature set point that
// can be changed while a run is in progress.
type Tunable interface {
	Setpoint() float64
	SetSetpoint(kelvin float64)
}

type None struct{}

func NewNone() *None { return &None{} }

func (n *None) Name() string                        { return "none" }
func (n *None) AfterStep(x dynamo.State, t float64) {}

// Rescale sets the temperature to Target exactly every Every steps.
type Rescale struct {
	sys    *md.System
	Target float64
	Every  int
	steps  int
}

func NewRescale(sys *md.System, target float64, every int) *Rescale {
	if every < 1 {
		every = 1
	}
	return &Rescale{sys: sys, Target: target, Every: every}
}

func (r *Rescale) Name() string { return "rescale" }

func (r *Rescale) Setpoint() float64          { return r.Target }
func (r *Rescale) SetSetpoint(kelvin float64) { r.Target = kelvin }

func (r *Rescale) AfterStep(x dynamo.State, t float64) {
	r.steps++
	if r.steps%r.Every != 0 {
		return
	}
	md.RescaleTo(x[3*r.sys.N:], r.sys.Mass, r.Target)
}

// Berendsen scales velocities by λ = sqrt(1 + dt/τ·(T0/T - 1)).
type Berendsen struct {
	sys    *md.System
	Target float64
	Tau    float64
	Dt     float64
}

func NewBerendsen(sys *md.System, target, tau, dt float64) *Berendsen {
	return &Berendsen{sys: sys, Target: target, Tau: tau, Dt: dt}
}

func (b *Berendsen) Name() string { return "berendsen" }

func (b *Berendsen) Setpoint() float64          { return b.Target }
func (b *Berendsen) SetSetpoint(kelvin float64) { b.Target = kelvin }

func (b *Berendsen) AfterStep(x dynamo.State, t float64) {
	current := b.sys.Temperature(x)
	if current <= 0 || b.Tau <= 0 {
		return
	}
	arg := 1 + b.Dt/b.Tau*(b.Target/current-1)
	if arg < 0 {
		arg = 0
	}
	lambda := math.Sqrt(arg)
	for i := 3 * b.sys.N; i < len(x); i++ {
		x[i] *= lambda
	}
}

// New builds a thermostat by name. params understands "target", "every",
// "tau" and "dt".
func New(name string, sys *md.System, params map[string]float64) (Thermostat, error) {
	switch name {
	case "none", "":
		return NewNone(), nil
	case "rescale":
		return NewRescale(sys, params["target"], int(params["every"])), nil
	case "berendsen":
		tau := params["tau"]
		if tau <= 0 {
			return nil, fmt.Errorf("berendsen thermostat needs tau > 0")
		}
		return NewBerendsen(sys, params["target"], tau, params["dt"]), nil
	}
	return nil, fmt.Errorf("unknown thermostat: %s", name)
}

func Names() []string {
	return []string{"none", "rescale", "berendsen"}
}
