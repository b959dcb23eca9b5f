package md

import "math"

type Box struct {
	L [3]float64 `json:"l" yaml:"l"`
}

func Cubic(l float64) Box {
	return Box{L: [3]float64{l, l, l}}
}

func (b Box) Volume() float64 {
	return b.L[0] * b.L[1] * b.L[2]
}

func (b Box) MinSide() float64 {
	return math.Min(b.L[0], math.Min(b.L[1], b.L[2]))
}

// MinimumImage maps a separation vector onto its nearest periodic image.
func (b Box) MinimumImage(d [3]float64) [3]float64 {
	for k := 0; k < 3; k++ {
		d[k] -= b.L[k] * math.Round(d[k]/b.L[k])
	}
	return d
}

// Wrap folds a coordinate along axis k into [0, L).
func (b Box) Wrap(x float64, k int) float64 {
	l := b.L[k]
	x -= l * math.Floor(x/l)
	if x >= l {
		x -= l
	}
	return x
}

// Distance is the minimum-image distance between two positions.
func (b Box) Distance(p, q [3]float64) float64 {
	d := b.MinimumImage([3]float64{q[0] - p[0], q[1] - p[1], q[2] - p[2]})
	return math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
}

// BoxForDensity returns the cubic box holding n particles at the given
// number density (Å⁻³).
func BoxForDensity(n int, density float64) Box {
	return Cubic(math.Cbrt(float64(n) / density))
}
