package md

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/simscat/internal/dynamo"
	"github.com/san-kum/simscat/internal/potential"
)

var (
	ErrTooFewParticles = errors.New("md: need at least two particles")
	ErrBoxTooSmall     = errors.New("md: box side must exceed twice the cutoff")
	ErrBadMass         = errors.New("md: particle mass must be positive")
)

// parallelMinChunk is the smallest per-goroutine slice of particles for the
// force loop.
const parallelMinChunk = 32

type System struct {
	N      int
	Mass   float64
	Box    Box
	Cutoff float64
	pair   potential.Pair
}

// NewSystem truncates pair at cutoff (energy-shifted when shift is set) and
// checks that the minimum-image convention holds for the box.
func NewSystem(n int, mass float64, pair potential.Pair, box Box, cutoff float64, shift bool) (*System, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewParticles, n)
	}
	if !(mass > 0) {
		return nil, fmt.Errorf("%w: got %g", ErrBadMass, mass)
	}
	if box.MinSide() <= 2*cutoff {
		return nil, fmt.Errorf("%w: side %.3f, cutoff %.3f", ErrBoxTooSmall, box.MinSide(), cutoff)
	}
	return &System{
		N:      n,
		Mass:   mass,
		Box:    box,
		Cutoff: cutoff,
		pair:   potential.NewCutoff(pair, cutoff, shift),
	}, nil
}

func (s *System) StateDim() int { return 6 * s.N }

func (s *System) Pair() potential.Pair { return s.pair }

// Derive returns [v, F/m]. A fresh slice is allocated on every call.
func (s *System) Derive(x dynamo.State, t float64) dynamo.State {
	n3 := 3 * s.N
	dx := make(dynamo.State, 2*n3)
	copy(dx[:n3], x[n3:])

	acc := dx[n3:]
	scale := potential.AccelerationFactor / s.Mass
	dynamo.ParallelFor(s.N, parallelMinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			f := s.forceOn(x, i)
			acc[3*i] = f[0] * scale
			acc[3*i+1] = f[1] * scale
			acc[3*i+2] = f[2] * scale
		}
	})
	return dx
}

// forceOn sums the pair forces acting on particle i. Each goroutine writes
// only its own particles, so Newton's third law is not exploited.
func (s *System) forceOn(x dynamo.State, i int) [3]float64 {
	var f [3]float64
	xi := [3]float64{x[3*i], x[3*i+1], x[3*i+2]}
	rc2 := s.Cutoff * s.Cutoff
	for j := 0; j < s.N; j++ {
		if j == i {
			continue
		}
		d := s.Box.MinimumImage([3]float64{xi[0] - x[3*j], xi[1] - x[3*j+1], xi[2] - x[3*j+2]})
		r2 := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
		if r2 >= rc2 || r2 == 0 {
			continue
		}
		r := math.Sqrt(r2)
		mag := s.pair.Force(r) / r
		f[0] += mag * d[0]
		f[1] += mag * d[1]
		f[2] += mag * d[2]
	}
	return f
}

// pairSums returns the potential energy and the virial Σ r·F over all pairs.
func (s *System) pairSums(x dynamo.State) (pe, virial float64) {
	rc2 := s.Cutoff * s.Cutoff
	for i := 0; i < s.N; i++ {
		for j := i + 1; j < s.N; j++ {
			d := s.Box.MinimumImage([3]float64{x[3*i] - x[3*j], x[3*i+1] - x[3*j+1], x[3*i+2] - x[3*j+2]})
			r2 := d[0]*d[0] + d[1]*d[1] + d[2]*d[2]
			if r2 >= rc2 || r2 == 0 {
				continue
			}
			r := math.Sqrt(r2)
			pe += s.pair.Energy(r)
			virial += r * s.pair.Force(r)
		}
	}
	return pe, virial
}

func (s *System) Potential(x dynamo.State) float64 {
	pe, _ := s.pairSums(x)
	return pe
}

// Kinetic is ½Σmv² in eV.
func (s *System) Kinetic(x dynamo.State) float64 {
	sum := 0.0
	for _, v := range x[3*s.N:] {
		sum += v * v
	}
	return 0.5 * s.Mass * sum / potential.AccelerationFactor
}

func (s *System) Energy(x dynamo.State) float64 {
	return s.Kinetic(x) + s.Potential(x)
}

// DegreesOfFreedom excludes the three centre-of-mass translations.
func (s *System) DegreesOfFreedom() int { return 3*s.N - 3 }

func (s *System) Temperature(x dynamo.State) float64 {
	return 2 * s.Kinetic(x) / (float64(s.DegreesOfFreedom()) * potential.BoltzmannEV)
}

// Pressure is the virial pressure in bar.
func (s *System) Pressure(x dynamo.State) float64 {
	_, virial := s.pairSums(x)
	v := s.Box.Volume()
	p := (2*s.Kinetic(x) + virial) / (3 * v)
	return p * potential.PressureFactor
}

// Thermo collects the instantaneous thermodynamic quantities of a state.
type Thermo struct {
	Kinetic     float64 `json:"kinetic"`
	Potential   float64 `json:"potential"`
	Total       float64 `json:"total"`
	Temperature float64 `json:"temperature"`
	Pressure    float64 `json:"pressure"`
}

func (s *System) Thermo(x dynamo.State) Thermo {
	ke := s.Kinetic(x)
	pe, virial := s.pairSums(x)
	return Thermo{
		Kinetic:     ke,
		Potential:   pe,
		Total:       ke + pe,
		Temperature: 2 * ke / (float64(s.DegreesOfFreedom()) * potential.BoltzmannEV),
		Pressure:    (2*ke + virial) / (3 * s.Box.Volume()) * potential.PressureFactor,
	}
}

// AfterStep wraps positions back into the box.
func (s *System) AfterStep(x dynamo.State, t float64) {
	for i := 0; i < s.N; i++ {
		for k := 0; k < 3; k++ {
			x[3*i+k] = s.Box.Wrap(x[3*i+k], k)
		}
	}
}

// Positions copies the particle coordinates out of a state.
func (s *System) Positions(x dynamo.State) [][3]float64 {
	return Coordinates(x[:3*s.N])
}

func (s *System) Velocities(x dynamo.State) [][3]float64 {
	return Coordinates(x[3*s.N : 6*s.N])
}

// Coordinates regroups a flat xyz slice.
func Coordinates(flat []float64) [][3]float64 {
	out := make([][3]float64, len(flat)/3)
	for i := range out {
		out[i] = [3]float64{flat[3*i], flat[3*i+1], flat[3*i+2]}
	}
	return out
}

// Flatten is the inverse of Coordinates.
func Flatten(pts [][3]float64) []float64 {
	out := make([]float64, 0, 3*len(pts))
	for _, p := range pts {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

// NewState concatenates flat position and velocity slices.
func NewState(pos, vel []float64) dynamo.State {
	x := make(dynamo.State, 0, len(pos)+len(vel))
	x = append(x, pos...)
	return append(x, vel...)
}
