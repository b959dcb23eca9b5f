package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/simscat/internal/config"
	"github.com/san-kum/simscat/internal/experiment"
	"github.com/san-kum/simscat/internal/logging"
)

func tinyConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Name = "tiny"
	cfg.Particles = 27
	cfg.Cutoff = 5
	cfg.Duration = 100
	cfg.SampleEvery = 10
	return cfg
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "melt.yaml")
	doc := `name: melt
description: heat a small argon box
steps:
  - preset: argon/liquid
    particles: 27
    duration: 100
    temperature: 60
  - preset: argon/liquid
    particles: 27
    duration: 100
    seed: 7
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "melt" || len(sc.Steps) != 2 {
		t.Fatalf("scenario = %+v", sc)
	}
	if sc.Steps[0].Temperature == nil || *sc.Steps[0].Temperature != 60 {
		t.Errorf("temperature override not parsed")
	}
	if sc.Steps[1].Seed == nil || *sc.Steps[1].Seed != 7 {
		t.Errorf("seed override not parsed")
	}
}

func TestScenarioStepConfig(t *testing.T) {
	temp := 0.0
	step := ScenarioStep{Preset: "argon/liquid", Particles: 27, Temperature: &temp, Integrator: "leapfrog"}
	cfg, err := step.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Particles != 27 || cfg.Temperature != 0 || cfg.Integrator != "leapfrog" {
		t.Errorf("config = %+v", cfg)
	}

	if _, err := (ScenarioStep{Preset: "neon/liquid"}).Config(); err == nil {
		t.Error("expected unknown preset error")
	}
}

func TestRunScenario(t *testing.T) {
	sc := &Scenario{Name: "pair", Steps: []ScenarioStep{
		{Preset: "argon/gas", Duration: 20},
		{Preset: "argon/gas", Duration: 20, Integrator: "rk4"},
	}}
	var seen []int
	sink := func(i int, out *experiment.Output) error {
		seen = append(seen, i)
		return nil
	}
	outs, err := RunScenario(context.Background(), sc, logging.Nop(), sink)
	if err != nil {
		t.Fatal(err)
	}
	if len(outs) != 2 || len(seen) != 2 || seen[1] != 1 {
		t.Fatalf("outputs = %d, sink calls = %v", len(outs), seen)
	}
	if outs[1].Config.Integrator != "rk4" {
		t.Errorf("second step integrator = %s", outs[1].Config.Integrator)
	}

	if _, err := RunScenario(context.Background(), &Scenario{}, logging.Nop(), sink); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("empty scenario: %v", err)
	}
}

func TestRunScenarioSinkError(t *testing.T) {
	sc := &Scenario{Name: "one", Steps: []ScenarioStep{{Preset: "argon/gas", Duration: 20}}}
	boom := errors.New("disk full")
	outs, err := RunScenario(context.Background(), sc, logging.Nop(), func(int, *experiment.Output) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if len(outs) != 0 {
		t.Errorf("outputs = %d, want 0", len(outs))
	}
}

func TestRunSweep(t *testing.T) {
	sw := Sweep{Base: tinyConfig(), Param: "temperature", Min: 50, Max: 150, N: 3}
	points, err := RunSweep(context.Background(), sw, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("points = %d", len(points))
	}
	want := []float64{50, 100, 150}
	for i, p := range points {
		if p.Value != want[i] {
			t.Errorf("point %d value = %g, want %g", i, p.Value, want[i])
		}
		if !p.Stable() {
			t.Errorf("point %d failed: %v", i, p.Err)
		}
	}
	if !(points[2].MeanTemperature > points[0].MeanTemperature) {
		t.Errorf("hotter run is not hotter: %g <= %g", points[2].MeanTemperature, points[0].MeanTemperature)
	}
}

func TestRunSweepRecordsFailures(t *testing.T) {
	sw := Sweep{Base: tinyConfig(), Param: "cutoff", Min: 5, Max: 50, N: 2}
	points, err := RunSweep(context.Background(), sw, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if !points[0].Stable() || points[1].Stable() {
		t.Errorf("stable = %v, %v; want true, false", points[0].Stable(), points[1].Stable())
	}
}

func TestRunSweepBadParam(t *testing.T) {
	if _, err := RunSweep(context.Background(), Sweep{Base: tinyConfig(), Param: "mass", N: 2}, logging.Nop()); err == nil {
		t.Error("expected error for unsupported parameter")
	}
	if _, err := RunSweep(context.Background(), Sweep{Base: tinyConfig(), Param: "dt"}, logging.Nop()); !errors.Is(err, ErrEmptyBatch) {
		t.Errorf("err = %v", err)
	}
}

func TestRunReplicas(t *testing.T) {
	points, err := RunReplicas(context.Background(), tinyConfig(), 3, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	for i, p := range points {
		if p.Seed != 1+int64(i) {
			t.Errorf("replica %d seed = %d", i, p.Seed)
		}
	}
	temp, _, _, stable := ReplicaStats(points)
	if stable != 3 {
		t.Fatalf("stable = %d", stable)
	}
	if temp.Mean <= 0 {
		t.Errorf("mean temperature = %g", temp.Mean)
	}
}

func TestRunReplicasCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunReplicas(ctx, tinyConfig(), 2, logging.Nop()); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
}
