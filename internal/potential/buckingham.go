package potential

import (
	"fmt"
	"math"
)

type Buckingham struct {
	A   float64 `json:"a" yaml:"a"`
	Rho float64 `json:"rho" yaml:"rho"`
	C   float64 `json:"c" yaml:"c"`
}

func (p Buckingham) Energy(r float64) float64 {
	return p.A*math.Exp(-r/p.Rho) - p.C*math.Pow(r, -6)
}

func (p Buckingham) Force(r float64) float64 {
	return p.A/p.Rho*math.Exp(-r/p.Rho) - 6*p.C*math.Pow(r, -7)
}

func (p Buckingham) Validate() error {
	if !(p.A > 0) || !(p.Rho > 0) || p.C < 0 {
		return fmt.Errorf("%w: buckingham needs A > 0, rho > 0, C >= 0", ErrNonPhysical)
	}
	return nil
}

func (p Buckingham) Convert(from, to Units) Buckingham {
	l := from.Length / to.Length
	e := from.Energy / to.Energy
	return Buckingham{A: p.A * e, Rho: p.Rho * l, C: p.C * e * math.Pow(l, 6)}
}

func (p Buckingham) String() string {
	return fmt.Sprintf("Buckingham(A=%.4e, rho=%.4e, C=%.4e)", p.A, p.Rho, p.C)
}
