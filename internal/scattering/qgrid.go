package scattering

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrNoAtoms = errors.New("scattering: no atoms")
	ErrBadQ    = errors.New("scattering: q must be positive")
	ErrBadAtom = errors.New("scattering: non-finite atom position")
)

// QGrid describes N points between Min and Max (Å⁻¹), spaced linearly or
// logarithmically.
type QGrid struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
	N   int     `json:"n" yaml:"n"`
	Log bool    `json:"log" yaml:"log"`
}

func DefaultQGrid() QGrid {
	return QGrid{Min: 0.5, Max: 10, N: 200}
}

func (g QGrid) Validate() error {
	if !(g.Min > 0) {
		return fmt.Errorf("%w: min=%g", ErrBadQ, g.Min)
	}
	if g.Max <= g.Min {
		return fmt.Errorf("scattering: q max %g must exceed min %g", g.Max, g.Min)
	}
	if g.N < 2 {
		return fmt.Errorf("scattering: q grid needs at least two points, got %d", g.N)
	}
	return nil
}

func checkPositions(positions [][3]float64) error {
	for i, p := range positions {
		for _, v := range p {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: atom %d at %v", ErrBadAtom, i, p)
			}
		}
	}
	return nil
}

func (g QGrid) Values() ([]float64, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	qs := make([]float64, g.N)
	if g.Log {
		lo, hi := math.Log(g.Min), math.Log(g.Max)
		for i := range qs {
			qs[i] = math.Exp(lo + (hi-lo)*float64(i)/float64(g.N-1))
		}
	} else {
		for i := range qs {
			qs[i] = g.Min + (g.Max-g.Min)*float64(i)/float64(g.N-1)
		}
	}
	qs[g.N-1] = g.Max
	return qs, nil
}

func checkQ(qs []float64) error {
	for _, q := range qs {
		if !(q > 0) || math.IsInf(q, 0) {
			return fmt.Errorf("%w: got %g", ErrBadQ, q)
		}
	}
	return nil
}
