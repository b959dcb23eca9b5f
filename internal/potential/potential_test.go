package potential

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// argon in lab units
const (
	argonSigma   = 3.405
	argonEpsilon = 0.0103
)

func TestLennardJonesSigmaEpsilonRoundTrip(t *testing.T) {
	p := FromSigmaEpsilon(argonSigma, argonEpsilon)

	sigma, err := p.Sigma()
	require.NoError(t, err)
	eps, err := p.Epsilon()
	require.NoError(t, err)

	assert.InDelta(t, argonSigma, sigma, 1e-12)
	assert.InDelta(t, argonEpsilon, eps, 1e-15)
}

func TestLennardJonesShape(t *testing.T) {
	p := FromSigmaEpsilon(argonSigma, argonEpsilon)
	rmin, err := p.Minimum()
	require.NoError(t, err)

	assert.InDelta(t, 0, p.Energy(argonSigma), 1e-12, "energy crosses zero at sigma")
	assert.InDelta(t, -argonEpsilon, p.Energy(rmin), 1e-12, "well depth at the minimum")
	assert.InDelta(t, 0, p.Force(rmin), 1e-10, "force vanishes at the minimum")
	assert.Greater(t, p.Force(0.9*rmin), 0.0, "repulsive inside the minimum")
	assert.Less(t, p.Force(1.1*rmin), 0.0, "attractive outside the minimum")
}

func TestLennardJonesForceIsNegativeGradient(t *testing.T) {
	pairs := []Pair{
		FromSigmaEpsilon(argonSigma, argonEpsilon),
		Buckingham{A: 1000, Rho: 0.3, C: 20},
	}
	for _, p := range pairs {
		for _, r := range []float64{3.0, 3.5, 4.2, 6.0} {
			h := 1e-6
			numeric := -(p.Energy(r+h) - p.Energy(r-h)) / (2 * h)
			assert.InEpsilon(t, numeric, p.Force(r), 1e-5, "r=%v %T", r, p)
		}
	}
}

func TestLennardJonesNonPhysical(t *testing.T) {
	_, err := LennardJones{A: -1, B: 1}.Sigma()
	assert.ErrorIs(t, err, ErrNonPhysical)
	_, err = LennardJones{A: 1, B: 0}.Epsilon()
	assert.ErrorIs(t, err, ErrNonPhysical)
	_, err = LennardJones{A: math.NaN(), B: 1}.Minimum()
	assert.ErrorIs(t, err, ErrNonPhysical)
}

func TestLennardJonesConvert(t *testing.T) {
	si := LennardJones{A: 1.25e-134, B: 8.17e-78}
	lab := si.Convert(SI, Lab)

	for _, r := range []float64{3.4, 3.8, 5.0} {
		want := si.Energy(r*Angstrom) / ElectronVolt
		assert.InEpsilon(t, want, lab.Energy(r), 1e-9)
	}

	back := lab.Convert(Lab, SI)
	assert.InEpsilon(t, si.A, back.A, 1e-12)
	assert.InEpsilon(t, si.B, back.B, 1e-12)

	sigma, err := lab.Sigma()
	require.NoError(t, err)
	assert.InDelta(t, 3.4, sigma, 0.05, "lesson parameters describe argon")
}

func TestBuckinghamConvert(t *testing.T) {
	lab := Buckingham{A: 1000, Rho: 0.3, C: 20}
	si := lab.Convert(Lab, SI)
	assert.InEpsilon(t, lab.Energy(3.5)*ElectronVolt, si.Energy(3.5*Angstrom), 1e-9)
	assert.NoError(t, lab.Validate())
	assert.ErrorIs(t, Buckingham{A: 1, Rho: 0}.Validate(), ErrNonPhysical)
}

func TestCutoff(t *testing.T) {
	p := FromSigmaEpsilon(argonSigma, argonEpsilon)
	rc := 2.5 * argonSigma

	plain := NewCutoff(p, rc, false)
	shifted := NewCutoff(p, rc, true)

	assert.Equal(t, 0.0, plain.Energy(rc))
	assert.Equal(t, 0.0, plain.Force(rc+1))
	assert.InDelta(t, p.Energy(4.0), plain.Energy(4.0), 1e-15)

	assert.InDelta(t, 0, shifted.Energy(rc-1e-9), 1e-12)
	assert.InDelta(t, p.Energy(4.0)-p.Energy(rc), shifted.Energy(4.0), 1e-15)
	assert.Equal(t, p.Force(4.0), shifted.Force(4.0))
}

func TestMix(t *testing.T) {
	tests := []struct {
		rule      Rule
		wantSigma float64
	}{
		{LorentzBerthelot, 3.0},
		{Geometric, math.Sqrt(8)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.rule), func(t *testing.T) {
			sigma, eps, err := Mix(tt.rule, 2, 0.01, 4, 0.04)
			require.NoError(t, err)
			assert.InDelta(t, tt.wantSigma, sigma, 1e-12)
			assert.InDelta(t, 0.02, eps, 1e-12)
		})
	}

	_, _, err := Mix(LorentzBerthelot, -1, 0.01, 4, 0.04)
	assert.ErrorIs(t, err, ErrNonPhysical)
	_, _, err = Mix("arithmetic", 1, 1, 1, 1)
	assert.Error(t, err)
}

func TestMixLJ(t *testing.T) {
	ar := FromSigmaEpsilon(3.405, 0.0103)
	kr := FromSigmaEpsilon(3.65, 0.0140)

	mixed, err := MixLJ(LorentzBerthelot, ar, kr)
	require.NoError(t, err)

	sigma, _ := mixed.Sigma()
	eps, _ := mixed.Epsilon()
	assert.InDelta(t, 0.5*(3.405+3.65), sigma, 1e-10)
	assert.InDelta(t, math.Sqrt(0.0103*0.0140), eps, 1e-12)

	self, err := MixLJ(Geometric, ar, ar)
	require.NoError(t, err)
	assert.InEpsilon(t, ar.A, self.A, 1e-9)
}

func TestParseRule(t *testing.T) {
	r, err := ParseRule("lb")
	require.NoError(t, err)
	assert.Equal(t, LorentzBerthelot, r)
	_, err = ParseRule("nope")
	assert.Error(t, err)
}

func TestConstants(t *testing.T) {
	assert.InEpsilon(t, 9.6485e-3, AccelerationFactor, 1e-4)
	assert.InEpsilon(t, Boltzmann/ElectronVolt, BoltzmannEV, 1e-8)
}
