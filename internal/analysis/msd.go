package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/simscat/internal/md"
	"gonum.org/v1/gonum/stat"
)

// Unwrap removes periodic jumps by accumulating minimum-image displacements
// between consecutive frames. Frames must be sampled often enough that no
// particle moves more than half a box between them.
func Unwrap(frames [][][3]float64, box md.Box) [][][3]float64 {
	if len(frames) == 0 {
		return nil
	}
	out := make([][][3]float64, len(frames))
	out[0] = append([][3]float64(nil), frames[0]...)
	for f := 1; f < len(frames); f++ {
		out[f] = make([][3]float64, len(frames[f]))
		for i := range frames[f] {
			d := box.MinimumImage([3]float64{
				frames[f][i][0] - frames[f-1][i][0],
				frames[f][i][1] - frames[f-1][i][1],
				frames[f][i][2] - frames[f-1][i][2],
			})
			for k := 0; k < 3; k++ {
				out[f][i][k] = out[f-1][i][k] + d[k]
			}
		}
	}
	return out
}

// MSD returns the mean squared displacement for every frame lag, averaged
// over particles and all available time origins. MSD[0] is zero.
func MSD(frames [][][3]float64, box md.Box) ([]float64, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	u := Unwrap(frames, box)
	nf := len(u)
	msd := make([]float64, nf)
	for lag := 1; lag < nf; lag++ {
		sum := 0.0
		count := 0
		for t0 := 0; t0+lag < nf; t0++ {
			a, b := u[t0], u[t0+lag]
			for i := range a {
				dx, dy, dz := b[i][0]-a[i][0], b[i][1]-a[i][1], b[i][2]-a[i][2]
				sum += dx*dx + dy*dy + dz*dz
				count++
			}
		}
		msd[lag] = sum / float64(count)
	}
	return msd, nil
}

// DiffusionCoefficient fits MSD(t) = 6Dt + c over the second half of the
// series (the diffusive regime) and returns D in Å²/fs.
func DiffusionCoefficient(msd, times []float64) (float64, error) {
	if len(msd) != len(times) {
		return 0, fmt.Errorf("analysis: %d msd values for %d times", len(msd), len(times))
	}
	if len(msd) < 4 {
		return 0, fmt.Errorf("analysis: need at least four msd points, got %d", len(msd))
	}
	start := len(msd) / 2
	_, slope := stat.LinearRegression(times[start:], msd[start:], nil, false)
	return slope / 6, nil
}

// EvenlySpaced returns how many leading samples share the spacing of the
// first interval. A run whose length is not a multiple of the sampling
// interval ends with a shorter final interval, which lag-based analyses
// must not see.
func EvenlySpaced(times []float64) int {
	if len(times) < 3 {
		return len(times)
	}
	dt := times[1] - times[0]
	tol := 1e-6 * math.Abs(dt)
	for i := 2; i < len(times); i++ {
		if math.Abs(times[i]-times[i-1]-dt) > tol {
			return i
		}
	}
	return len(times)
}
