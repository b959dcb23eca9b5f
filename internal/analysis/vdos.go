package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// VACF is the normalised velocity autocorrelation function averaged over
// particles and time origins, for lags 0..len(frames)/2.
func VACF(velFrames [][][3]float64) ([]float64, error) {
	nf := len(velFrames)
	if nf < 2 {
		return nil, ErrNoFrames
	}
	maxLag := nf / 2
	c := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		sum := 0.0
		count := 0
		for t0 := 0; t0+lag < nf; t0++ {
			a, b := velFrames[t0], velFrames[t0+lag]
			for i := range a {
				sum += a[i][0]*b[i][0] + a[i][1]*b[i][1] + a[i][2]*b[i][2]
				count++
			}
		}
		c[lag] = sum / float64(count)
	}
	if c[0] == 0 {
		return nil, fmt.Errorf("analysis: velocities are all zero")
	}
	c0 := c[0]
	for i := range c {
		c[i] /= c0
	}
	return c, nil
}

// VDOS returns frequencies (THz) and the magnitude spectrum of the VACF for
// frames sampled dt femtoseconds apart. The VACF is mirrored before the
// transform so the spectrum is that of an even function.
func VDOS(velFrames [][][3]float64, dt float64) ([]float64, []float64, error) {
	if dt <= 0 {
		return nil, nil, fmt.Errorf("analysis: dt must be positive")
	}
	c, err := VACF(velFrames)
	if err != nil {
		return nil, nil, err
	}

	sym := make([]float64, 0, 2*len(c)-1)
	sym = append(sym, c...)
	for i := len(c) - 2; i >= 1; i-- {
		sym = append(sym, c[i])
	}

	spec := fft.FFTReal(sym)
	m := len(sym)
	half := m/2 + 1
	freqs := make([]float64, half)
	dos := make([]float64, half)
	for k := 0; k < half; k++ {
		// 1/fs = 1000 THz
		freqs[k] = float64(k) / (float64(m) * dt) * 1000
		dos[k] = cmplx.Abs(spec[k]) * dt
	}
	return freqs, dos, nil
}
