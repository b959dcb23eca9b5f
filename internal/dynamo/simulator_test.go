package dynamo

import (
	"context"
	"errors"
	"math"
	"testing"
)

type decay struct{}

func (decay) Derive(x State, t float64) State { return State{-x[0]} }
func (decay) StateDim() int                   { return 1 }

type blowup struct{}

func (blowup) Derive(x State, t float64) State { return State{math.Inf(1)} }
func (blowup) StateDim() int                   { return 1 }

type euler struct{}

func (euler) Step(dyn System, x State, t, dt float64) State {
	dx := dyn.Derive(x, t)
	return State{x[0] + dt*dx[0]}
}

type clamp struct{ calls int }

func (c *clamp) AfterStep(x State, t float64) {
	c.calls++
	if x[0] < 0.5 {
		x[0] = 0.5
	}
}

func TestSimulatorRun(t *testing.T) {
	sim := New(decay{}, euler{})

	cfg := Config{Dt: 0.1, Duration: 1.0, SampleEvery: 1}
	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Frames) != 11 {
		t.Errorf("expected 11 frames, got %d", len(result.Frames))
	}
	if len(result.Times) != 11 {
		t.Errorf("expected 11 times, got %d", len(result.Times))
	}
	if math.Abs(result.Times[10]-1.0) > 1e-12 {
		t.Errorf("expected final time 1.0, got %v", result.Times[10])
	}

	final := result.Final()[0]
	expected := math.Exp(-1.0)
	if math.Abs(final-expected) > 0.2 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, final)
	}
}

func TestSimulatorSampling(t *testing.T) {
	sim := New(decay{}, euler{})

	tests := []struct {
		every  int
		frames int
	}{
		{1, 11},
		{2, 6},
		{3, 5}, // 0,3,6,9 plus final 10
		{20, 2},
	}
	for _, tt := range tests {
		cfg := Config{Dt: 0.1, Duration: 1.0, SampleEvery: tt.every}
		result, err := sim.Run(context.Background(), State{1.0}, cfg)
		if err != nil {
			t.Fatalf("every=%d: %v", tt.every, err)
		}
		if len(result.Frames) != tt.frames {
			t.Errorf("every=%d: expected %d frames, got %d", tt.every, tt.frames, len(result.Frames))
		}
		if result.Times[len(result.Times)-1] != 1.0 {
			t.Errorf("every=%d: final time %v", tt.every, result.Times[len(result.Times)-1])
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(decay{}, euler{})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"negative sampling", Config{Dt: 0.1, Duration: 1.0, SampleEvery: -1}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), State{1.0}, tt.cfg)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSimulatorDimensionMismatch(t *testing.T) {
	sim := New(decay{}, euler{})
	_, err := sim.Run(context.Background(), State{1.0, 2.0}, Config{Dt: 0.1, Duration: 1})
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestSimulatorDiverges(t *testing.T) {
	sim := New(blowup{}, euler{})
	cfg := Config{Dt: 0.1, Duration: 1.0, ValidateState: true}
	result, err := sim.Run(context.Background(), State{1.0}, cfg)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	var simErr *SimulationError
	if !errors.As(err, &simErr) || simErr.Step != 0 {
		t.Errorf("expected SimulationError at step 0, got %v", err)
	}
	if len(result.Frames) != 1 {
		t.Errorf("expected only the initial frame, got %d", len(result.Frames))
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(decay{}, euler{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sim.Run(ctx, State{1.0}, Config{Dt: 0.1, Duration: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSimulatorHooks(t *testing.T) {
	sim := New(decay{}, euler{})
	h := &clamp{}
	sim.AddHook(h)

	result, err := sim.Run(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 2.0, SampleEvery: 1})
	if err != nil {
		t.Fatal(err)
	}
	if h.calls != 20 {
		t.Errorf("expected 20 hook calls, got %d", h.calls)
	}
	if result.Final()[0] != 0.5 {
		t.Errorf("hook did not clamp state: %v", result.Final())
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(x State, time float64) {
	t.count++
	t.sum += x[0]
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(decay{}, euler{})

	metric := &testMetric{}
	sim.AddMetric(metric)

	result, err := sim.Run(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}

	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
}

func TestRunWithCallback(t *testing.T) {
	sim := New(decay{}, euler{})
	calls := 0
	err := sim.RunWithCallback(context.Background(), State{1.0}, Config{Dt: 0.1, Duration: 1.0}, func(x State, t float64) bool {
		calls++
		return calls < 5
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 5 {
		t.Errorf("expected callback to stop after 5 calls, got %d", calls)
	}
}

func TestAdvanceAppliesHooks(t *testing.T) {
	sim := New(decay{}, euler{})
	h := &clamp{}
	sim.AddHook(h)
	x := sim.Advance(State{0.52}, 0, 0.1)
	if x[0] != 0.5 || h.calls != 1 {
		t.Errorf("expected one clamp to 0.5, got %v after %d calls", x[0], h.calls)
	}
}
