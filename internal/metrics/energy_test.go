package metrics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/san-kum/simscat/internal/dynamo"
	"github.com/san-kum/simscat/internal/md"
	"github.com/san-kum/simscat/internal/potential"
)

type spring struct{}

func (spring) Derive(x dynamo.State, t float64) dynamo.State { return dynamo.State{x[1], -x[0]} }
func (spring) StateDim() int                                 { return 2 }
func (spring) Energy(x dynamo.State) float64                 { return 0.5 * (x[0]*x[0] + x[1]*x[1]) }

func TestEnergyDrift(t *testing.T) {
	m := NewEnergyDrift(spring{})

	m.Observe(dynamo.State{1, 0}, 0)
	if m.Value() != 0 {
		t.Fatalf("expected zero drift after first sample, got %v", m.Value())
	}

	m.Observe(dynamo.State{1.1, 0}, 1)
	m.Observe(dynamo.State{1, 0}, 2)
	expected := (0.5*1.21 - 0.5) / 0.5
	if math.Abs(m.Value()-expected) > 1e-12 {
		t.Errorf("expected max drift %v, got %v", expected, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestEnergyDriftIgnoresNonHamiltonian(t *testing.T) {
	type plain struct{ dynamo.System }
	m := NewEnergyDrift(plain{})
	m.Observe(dynamo.State{1, 0}, 0)
	if m.Value() != 0 {
		t.Error("expected no drift for a system without energy")
	}
}

func TestMeanTemperature(t *testing.T) {
	box := md.Cubic(30)
	sys, err := md.NewSystem(8, 39.948, potential.FromSigmaEpsilon(3.405, 0.0103), box, 8, true)
	if err != nil {
		t.Fatal(err)
	}
	rng := rand.New(rand.NewSource(1))
	pos := md.Lattice(8, box)

	m := NewMeanTemperature(sys)
	m.Observe(md.NewState(pos, md.MaxwellBoltzmann(8, 39.948, 100, rng)), 0)
	m.Observe(md.NewState(pos, md.MaxwellBoltzmann(8, 39.948, 300, rng)), 1)

	if math.Abs(m.Value()-200) > 1e-9 {
		t.Errorf("expected mean temperature 200, got %v", m.Value())
	}
	if m.Name() != "mean_temperature" {
		t.Errorf("unexpected name %q", m.Name())
	}

	names := map[string]bool{}
	for _, d := range Default(sys) {
		names[d.Name()] = true
	}
	for _, want := range []string{"energy_drift", "mean_temperature", "mean_pressure", "mean_potential"} {
		if !names[want] {
			t.Errorf("default metrics missing %s", want)
		}
	}
}
