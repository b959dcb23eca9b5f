package potential

import (
	"errors"
	"fmt"
	"math"
)

var ErrNonPhysical = errors.New("potential: non-physical parameters")

// Pair is a spherically symmetric pair interaction. Force returns -dE/dr, so
// positive values push particles apart.
type Pair interface {
	Energy(r float64) float64
	Force(r float64) float64
}

type LennardJones struct {
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
}

// FromSigmaEpsilon builds the A/B form from the collision diameter σ and the
// well depth ε.
func FromSigmaEpsilon(sigma, epsilon float64) LennardJones {
	s6 := math.Pow(sigma, 6)
	return LennardJones{A: 4 * epsilon * s6 * s6, B: 4 * epsilon * s6}
}

func (p LennardJones) Energy(r float64) float64 {
	r6 := math.Pow(r, -6)
	return p.A*r6*r6 - p.B*r6
}

func (p LennardJones) Force(r float64) float64 {
	r6 := math.Pow(r, -6)
	return (12*p.A*r6*r6 - 6*p.B*r6) / r
}

func (p LennardJones) Validate() error {
	if !(p.A > 0) || !(p.B > 0) {
		return fmt.Errorf("%w: lennard-jones needs A > 0 and B > 0 (A=%g, B=%g)", ErrNonPhysical, p.A, p.B)
	}
	return nil
}

func (p LennardJones) Sigma() (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return math.Pow(p.A/p.B, 1.0/6.0), nil
}

func (p LennardJones) Epsilon() (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return p.B * p.B / (4 * p.A), nil
}

// Minimum is the separation of the energy minimum, 2^(1/6)·σ.
func (p LennardJones) Minimum() (float64, error) {
	sigma, err := p.Sigma()
	if err != nil {
		return 0, err
	}
	return math.Pow(2, 1.0/6.0) * sigma, nil
}

// Convert rescales the parameters from one unit system to another.
func (p LennardJones) Convert(from, to Units) LennardJones {
	l := from.Length / to.Length
	e := from.Energy / to.Energy
	l6 := math.Pow(l, 6)
	return LennardJones{A: p.A * e * l6 * l6, B: p.B * e * l6}
}

func (p LennardJones) String() string {
	return fmt.Sprintf("LJ(A=%.4e, B=%.4e)", p.A, p.B)
}
