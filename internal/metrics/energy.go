// Package metrics collects running observables from a simulation.
package metrics

import (
	"math"

	"github.com/san-kum/simscat/internal/dynamo"
	"github.com/san-kum/simscat/internal/md"
)

// EnergyDrift tracks the largest relative deviation of the total energy from
// its first observed value.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
	dyn           dynamo.System
}

func NewEnergyDrift(dyn dynamo.System) *EnergyDrift {
	return &EnergyDrift{
		name: "energy_drift",
		dyn:  dyn,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x dynamo.State, t float64) {
	h, ok := e.dyn.(dynamo.Hamiltonian)
	if !ok {
		return
	}

	energy := h.Energy(x)

	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.samples++

	if e.initialEnergy != 0 {
		drift := math.Abs(energy-e.initialEnergy) / math.Abs(e.initialEnergy)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}

// Mean averages a scalar observable of the md system over every step.
type Mean struct {
	name    string
	observe func(x dynamo.State) float64
	sum     float64
	samples int
}

func NewMeanTemperature(sys *md.System) *Mean {
	return &Mean{name: "mean_temperature", observe: sys.Temperature}
}

func NewMeanPressure(sys *md.System) *Mean {
	return &Mean{name: "mean_pressure", observe: sys.Pressure}
}

func NewMeanPotential(sys *md.System) *Mean {
	return &Mean{name: "mean_potential", observe: sys.Potential}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(x dynamo.State, t float64) {
	m.sum += m.observe(x)
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}

// Default is the metric set recorded for every md run.
func Default(sys *md.System) []dynamo.Metric {
	return []dynamo.Metric{
		NewEnergyDrift(sys),
		NewMeanTemperature(sys),
		NewMeanPressure(sys),
		NewMeanPotential(sys),
	}
}
