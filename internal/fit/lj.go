package fit

import (
	"math"

	"github.com/san-kum/simscat/internal/potential"
	"gonum.org/v1/gonum/mat"
)

// LJResult holds a Lennard-Jones fit in the units of the input dataset.
// ErrA and ErrB treat the sample uncertainties as absolute.
type LJResult struct {
	A, B         float64
	ErrA, ErrB   float64
	Cov          [2][2]float64
	ChiSq        float64
	ReducedChiSq float64
	Dof          int
	Units        potential.Units
}

func (r LJResult) Potential() potential.LennardJones {
	return potential.LennardJones{A: r.A, B: r.B}
}

// FitLJ fits E(r) = A/r¹² - B/r⁶ by weighted linear least squares with
// weights 1/σ². The model is linear in A and B, so the normal equations are
// solved directly.
func FitLJ(ds Dataset) (LJResult, error) {
	if err := ds.Validate(2); err != nil {
		return LJResult{}, err
	}

	r0, e0 := ds.scales()
	n := len(ds.Samples)

	design := mat.NewDense(n, 2, nil)
	y := mat.NewVecDense(n, nil)
	for i, s := range ds.Samples {
		x := s.R / r0
		w := e0 / s.Sigma
		x6 := math.Pow(x, -6)
		design.Set(i, 0, w*x6*x6)
		design.Set(i, 1, -w*x6)
		y.SetVec(i, w*s.E/e0)
	}

	p, cov, err := solveNormal(design, y)
	if err != nil {
		return LJResult{}, err
	}

	sa := e0 * math.Pow(r0, 12)
	sb := e0 * math.Pow(r0, 6)
	res := LJResult{
		A:     p[0] * sa,
		B:     p[1] * sb,
		Units: ds.Units,
		Dof:   n - 2,
	}
	res.Cov[0][0] = cov.At(0, 0) * sa * sa
	res.Cov[0][1] = cov.At(0, 1) * sa * sb
	res.Cov[1][0] = res.Cov[0][1]
	res.Cov[1][1] = cov.At(1, 1) * sb * sb
	res.ErrA = math.Sqrt(res.Cov[0][0])
	res.ErrB = math.Sqrt(res.Cov[1][1])

	res.ChiSq = ChiSquare(res.Potential(), ds)
	if res.Dof > 0 {
		res.ReducedChiSq = res.ChiSq / float64(res.Dof)
	}
	return res, nil
}

// solveNormal solves (JᵀJ)p = Jᵀy for an already weighted design matrix and
// returns the parameters together with (JᵀJ)⁻¹.
func solveNormal(j *mat.Dense, y *mat.VecDense) ([]float64, *mat.SymDense, error) {
	_, k := j.Dims()

	var jtj mat.SymDense
	jtj.SymOuterK(1, j.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(&jtj); !ok {
		return nil, nil, ErrSingular
	}

	var rhs mat.VecDense
	rhs.MulVec(j.T(), y)

	var p mat.VecDense
	if err := chol.SolveVecTo(&p, &rhs); err != nil {
		return nil, nil, ErrSingular
	}

	cov := mat.NewSymDense(k, nil)
	if err := chol.InverseTo(cov); err != nil {
		return nil, nil, ErrSingular
	}

	out := make([]float64, k)
	for i := range out {
		out[i] = p.AtVec(i)
	}
	return out, cov, nil
}

// ChiSquare is Σ((E - model(r))/σ)².
func ChiSquare(p potential.Pair, ds Dataset) float64 {
	sum := 0.0
	for _, z := range Residuals(p, ds) {
		sum += z * z
	}
	return sum
}

// Residuals returns the normalised residuals (E - model(r))/σ per sample.
func Residuals(p potential.Pair, ds Dataset) []float64 {
	out := make([]float64, len(ds.Samples))
	for i, s := range ds.Samples {
		out[i] = (s.E - p.Energy(s.R)) / s.Sigma
	}
	return out
}
