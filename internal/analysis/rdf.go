package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/simscat/internal/md"
)

var (
	ErrNoFrames = errors.New("analysis: no frames")
	ErrRange    = errors.New("analysis: range exceeds half the box")
)

type RDFResult struct {
	R []float64 `json:"r"`
	G []float64 `json:"g"`
}

// RDF histograms minimum-image pair distances up to rMax and normalises each
// shell by the ideal-gas count at density (N-1)/V, so an uncorrelated fluid
// gives g(r) = 1.
func RDF(frames [][][3]float64, box md.Box, nBins int, rMax float64) (RDFResult, error) {
	if len(frames) == 0 || len(frames[0]) < 2 {
		return RDFResult{}, ErrNoFrames
	}
	if rMax <= 0 || rMax > box.MinSide()/2 {
		return RDFResult{}, fmt.Errorf("%w: rMax=%.3f, box=%.3f", ErrRange, rMax, box.MinSide())
	}
	if nBins < 1 {
		return RDFResult{}, fmt.Errorf("analysis: need at least one bin")
	}

	dr := rMax / float64(nBins)
	hist := make([]float64, nBins)
	n := len(frames[0])

	for _, pts := range frames {
		for i := 0; i < len(pts); i++ {
			for j := i + 1; j < len(pts); j++ {
				r := box.Distance(pts[i], pts[j])
				if r >= rMax {
					continue
				}
				k := int(r / dr)
				if k >= nBins {
					k = nBins - 1
				}
				hist[k] += 2
			}
		}
	}

	rho := float64(n-1) / box.Volume()
	res := RDFResult{R: make([]float64, nBins), G: make([]float64, nBins)}
	for k := range hist {
		lo, hi := float64(k)*dr, float64(k+1)*dr
		shell := 4.0 / 3.0 * math.Pi * (hi*hi*hi - lo*lo*lo)
		res.R[k] = lo + dr/2
		res.G[k] = hist[k] / (float64(len(frames)) * float64(n) * rho * shell)
	}
	return res, nil
}

// FirstPeak returns the position and height of the first local maximum of
// g(r) that rises above 1.
func (r RDFResult) FirstPeak() (float64, float64) {
	for i := 0; i < len(r.G); i++ {
		if r.G[i] <= 1 {
			continue
		}
		if i == len(r.G)-1 || r.G[i] >= r.G[i+1] {
			return r.R[i], r.G[i]
		}
	}
	return 0, 0
}
