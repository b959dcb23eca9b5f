package fit

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/simscat/internal/optim"
	"github.com/san-kum/simscat/internal/potential"
	"gonum.org/v1/gonum/optimize"
)

type BuckinghamResult struct {
	Params       potential.Buckingham
	ChiSq        float64
	ReducedChiSq float64
	Dof          int
	Evaluations  int
	Units        potential.Units
}

// FitBuckingham minimises χ² for E(r) = A·exp(-r/ρ) - C/r⁶ with Nelder–Mead
// over the logarithms of the parameters, which keeps them positive. A nil
// guess is replaced by the best point of a coarse grid search.
func FitBuckingham(ctx context.Context, ds Dataset, guess *potential.Buckingham) (BuckinghamResult, error) {
	if err := ds.Validate(3); err != nil {
		return BuckinghamResult{}, err
	}

	r0, e0 := ds.scales()
	scaled := Dataset{Name: ds.Name, Samples: make([]Sample, len(ds.Samples))}
	for i, s := range ds.Samples {
		scaled.Samples[i] = Sample{R: s.R / r0, E: s.E / e0, Sigma: s.Sigma / e0}
	}

	chi := func(x []float64) float64 {
		p := potential.Buckingham{A: math.Exp(x[0]), Rho: math.Exp(x[1]), C: math.Exp(x[2])}
		return ChiSquare(p, scaled)
	}

	var x0 []float64
	if guess != nil {
		if err := guess.Validate(); err != nil {
			return BuckinghamResult{}, err
		}
		c := guess.C / (e0 * math.Pow(r0, 6))
		if c <= 0 {
			c = 1e-6
		}
		x0 = []float64{math.Log(guess.A / e0), math.Log(guess.Rho / r0), math.Log(c)}
	} else {
		seed, err := seedBuckingham(ctx, chi)
		if err != nil {
			return BuckinghamResult{}, err
		}
		x0 = seed
	}

	problem := optimize.Problem{Func: chi}
	settings := &optimize.Settings{
		FuncEvaluations: 50000,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-12,
			Iterations: 500,
		},
	}
	res, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil && res == nil {
		return BuckinghamResult{}, fmt.Errorf("buckingham fit: %w", err)
	}

	p := potential.Buckingham{
		A:   math.Exp(res.X[0]) * e0,
		Rho: math.Exp(res.X[1]) * r0,
		C:   math.Exp(res.X[2]) * e0 * math.Pow(r0, 6),
	}
	out := BuckinghamResult{
		Params:      p,
		ChiSq:       ChiSquare(p, ds),
		Dof:         len(ds.Samples) - 3,
		Evaluations: res.Stats.FuncEvaluations,
		Units:       ds.Units,
	}
	if out.Dof > 0 {
		out.ReducedChiSq = out.ChiSq / float64(out.Dof)
	}
	return out, nil
}

// seedBuckingham scans log-parameters in scaled units, where separations are
// of order one and the repulsive range is a small fraction of that.
func seedBuckingham(ctx context.Context, chi func([]float64) float64) ([]float64, error) {
	g := optim.NewGridSearch(
		[]string{"logA", "logRho", "logC"},
		[][]float64{
			optim.Linspace(0, 25, 11),
			optim.Linspace(math.Log(0.02), math.Log(0.6), 9),
			optim.Linspace(math.Log(0.05), math.Log(20), 9),
		},
	)
	best, _, err := g.Search(ctx, func(p map[string]float64) (float64, error) {
		return chi([]float64{p["logA"], p["logRho"], p["logC"]}), nil
	})
	if err != nil {
		return nil, err
	}
	return []float64{best["logA"], best["logRho"], best["logC"]}, nil
}
