package optim

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{Linspace(-2, 2, 9), Linspace(-2, 2, 9)})

	evals := 0
	best, val, err := g.Search(context.Background(), func(p map[string]float64) (float64, error) {
		evals++
		return (p["x"]-1)*(p["x"]-1) + (p["y"]+0.5)*(p["y"]+0.5), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if evals != 81 {
		t.Errorf("expected 81 evaluations, got %d", evals)
	}
	if best["x"] != 1 || best["y"] != -0.5 {
		t.Errorf("unexpected best point %v", best)
	}
	if val != 0 {
		t.Errorf("expected objective 0, got %v", val)
	}
}

func TestGridSearchSkipsBadPoints(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{-1, 0, 1}})
	best, _, err := g.Search(context.Background(), func(p map[string]float64) (float64, error) {
		switch p["x"] {
		case -1:
			return math.NaN(), nil
		case 0:
			return 0, errors.New("boom")
		}
		return 5, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if best["x"] != 1 {
		t.Errorf("expected the only finite point, got %v", best)
	}
}

func TestGridSearchNoCandidate(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})
	_, _, err := g.Search(context.Background(), func(map[string]float64) (float64, error) {
		return math.Inf(1), nil
	})
	if !errors.Is(err, ErrNoCandidate) {
		t.Errorf("expected ErrNoCandidate, got %v", err)
	}
}

func TestGridSearchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2}})
	_, _, err := g.Search(ctx, func(map[string]float64) (float64, error) { return 0, nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestLinspace(t *testing.T) {
	got := Linspace(0, 1, 5)
	want := []float64{0, 0.25, 0.5, 0.75, 1}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-15 {
			t.Fatalf("Linspace = %v", got)
		}
	}
	if len(Linspace(3, 4, 1)) != 1 {
		t.Error("single point linspace")
	}
}
