package md

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/simscat/internal/potential"
)

var ErrPacking = errors.New("md: could not place particles without overlap")

// maxAttemptsPerParticle bounds rejection sampling in RandomPositions.
const maxAttemptsPerParticle = 1000

// Lattice places n particles on the sites of a simple cubic lattice filling
// the box. Sites are offset by half a spacing from the box origin.
func Lattice(n int, box Box) []float64 {
	m := int(math.Ceil(math.Cbrt(float64(n))))
	pos := make([]float64, 0, 3*n)
	for i := 0; i < m && len(pos) < 3*n; i++ {
		for j := 0; j < m && len(pos) < 3*n; j++ {
			for k := 0; k < m && len(pos) < 3*n; k++ {
				pos = append(pos,
					(float64(i)+0.5)*box.L[0]/float64(m),
					(float64(j)+0.5)*box.L[1]/float64(m),
					(float64(k)+0.5)*box.L[2]/float64(m),
				)
			}
		}
	}
	return pos
}

// FCC places n particles on a face-centred cubic lattice of m×m×m cells,
// the smallest with 4m³ ≥ n. Sites are offset by a quarter cell.
func FCC(n int, box Box) []float64 {
	m := int(math.Ceil(math.Cbrt(float64(n) / 4)))
	basis := [4][3]float64{{0, 0, 0}, {0.5, 0.5, 0}, {0.5, 0, 0.5}, {0, 0.5, 0.5}}
	pos := make([]float64, 0, 3*n)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			for k := 0; k < m; k++ {
				for _, b := range basis {
					if len(pos) == 3*n {
						return pos
					}
					cell := [3]int{i, j, k}
					for ax := 0; ax < 3; ax++ {
						a := box.L[ax] / float64(m)
						pos = append(pos, (float64(cell[ax])+b[ax]+0.25)*a)
					}
				}
			}
		}
	}
	return pos
}

// RandomPositions inserts particles uniformly at random, rejecting any trial
// closer than minDist (minimum image) to an accepted particle.
func RandomPositions(n int, box Box, minDist float64, rng *rand.Rand) ([]float64, error) {
	pts := make([][3]float64, 0, n)
	attempts := 0
	for len(pts) < n {
		if attempts >= maxAttemptsPerParticle*n {
			return nil, fmt.Errorf("%w: placed %d of %d", ErrPacking, len(pts), n)
		}
		attempts++
		trial := [3]float64{rng.Float64() * box.L[0], rng.Float64() * box.L[1], rng.Float64() * box.L[2]}
		ok := true
		for _, p := range pts {
			if box.Distance(p, trial) < minDist {
				ok = false
				break
			}
		}
		if ok {
			pts = append(pts, trial)
		}
	}
	return Flatten(pts), nil
}

// MaxwellBoltzmann draws velocities (Å/fs) for n particles of the given mass
// (amu) at temperature T (K). The centre-of-mass drift is removed and the
// velocities are rescaled so the instantaneous temperature is exactly T.
func MaxwellBoltzmann(n int, mass, temperature float64, rng *rand.Rand) []float64 {
	vel := make([]float64, 3*n)
	if temperature <= 0 || n < 2 {
		return vel
	}
	sd := math.Sqrt(potential.BoltzmannEV * temperature * potential.AccelerationFactor / mass)
	for i := range vel {
		vel[i] = rng.NormFloat64() * sd
	}
	RemoveDrift(vel)
	RescaleTo(vel, mass, temperature)
	return vel
}

// RemoveDrift subtracts the mean velocity in place.
func RemoveDrift(vel []float64) {
	n := len(vel) / 3
	var mean [3]float64
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			mean[k] += vel[3*i+k]
		}
	}
	for k := range mean {
		mean[k] /= float64(n)
	}
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			vel[3*i+k] -= mean[k]
		}
	}
}

// KineticTemperature is the temperature of a drift-free velocity set.
func KineticTemperature(vel []float64, mass float64) float64 {
	n := len(vel) / 3
	if n < 2 {
		return 0
	}
	sum := 0.0
	for _, v := range vel {
		sum += v * v
	}
	ke := 0.5 * mass * sum / potential.AccelerationFactor
	return 2 * ke / (float64(3*n-3) * potential.BoltzmannEV)
}

// RescaleTo scales velocities in place to the target temperature. It
// returns the applied factor, or 1 when the current temperature is zero.
func RescaleTo(vel []float64, mass, target float64) float64 {
	current := KineticTemperature(vel, mass)
	if current <= 0 || target < 0 {
		return 1
	}
	f := math.Sqrt(target / current)
	for i := range vel {
		vel[i] *= f
	}
	return f
}
