package potential

import (
	"fmt"
	"math"
)

type Rule string

const (
	LorentzBerthelot Rule = "lorentz-berthelot"
	Geometric        Rule = "geometric"
)

func ParseRule(s string) (Rule, error) {
	switch Rule(s) {
	case LorentzBerthelot, "lb", "":
		return LorentzBerthelot, nil
	case Geometric:
		return Geometric, nil
	}
	return "", fmt.Errorf("unknown mixing rule: %s", s)
}

// Mix derives the cross-species σ and ε from single-species values.
func Mix(rule Rule, sigmaI, epsI, sigmaJ, epsJ float64) (sigma, eps float64, err error) {
	if sigmaI <= 0 || sigmaJ <= 0 || epsI < 0 || epsJ < 0 {
		return 0, 0, fmt.Errorf("%w: sigma must be positive and epsilon non-negative", ErrNonPhysical)
	}
	eps = math.Sqrt(epsI * epsJ)
	switch rule {
	case LorentzBerthelot:
		sigma = 0.5 * (sigmaI + sigmaJ)
	case Geometric:
		sigma = math.Sqrt(sigmaI * sigmaJ)
	default:
		return 0, 0, fmt.Errorf("unknown mixing rule: %s", rule)
	}
	return sigma, eps, nil
}

// MixLJ mixes two Lennard-Jones interactions through their σ/ε form.
func MixLJ(rule Rule, p, q LennardJones) (LennardJones, error) {
	sp, err := p.Sigma()
	if err != nil {
		return LennardJones{}, err
	}
	ep, _ := p.Epsilon()
	sq, err := q.Sigma()
	if err != nil {
		return LennardJones{}, err
	}
	eq, _ := q.Epsilon()

	sigma, eps, err := Mix(rule, sp, ep, sq, eq)
	if err != nil {
		return LennardJones{}, err
	}
	return FromSigmaEpsilon(sigma, eps), nil
}
