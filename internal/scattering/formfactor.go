package scattering

import (
	"fmt"
	"math"
	"strings"
)

type FormFactor interface {
	At(q float64) float64
}

// Constant is a q-independent scattering length, appropriate for neutrons.
type Constant float64

func (c Constant) At(q float64) float64 { return float64(c) }

// Gaussian approximates an X-ray form factor by f(q) = A·exp(-B·(q/4π)²).
type Gaussian struct {
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
}

func (g Gaussian) At(q float64) float64 {
	s := q / (4 * math.Pi)
	return g.A * math.Exp(-g.B*s*s)
}

// Argon is a single-Gaussian fit to the argon X-ray form factor.
var Argon = Gaussian{A: 18, B: 9.5}

func ParseFormFactor(s string) (FormFactor, error) {
	switch strings.ToLower(s) {
	case "", "unit", "neutron":
		return Constant(1), nil
	case "argon", "ar", "xray":
		return Argon, nil
	default:
		return nil, fmt.Errorf("scattering: unknown form factor %q", s)
	}
}
