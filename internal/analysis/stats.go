package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Summary struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	StdErr float64 `json:"stderr"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize reports the mean of a series together with a block-averaged
// standard error (ten blocks), which accounts for correlation between
// consecutive samples.
func Summarize(series []float64) Summary {
	if len(series) == 0 {
		return Summary{}
	}
	mean, std := stat.MeanStdDev(series, nil)
	s := Summary{
		Mean: mean,
		Std:  std,
		Min:  floats.Min(series),
		Max:  floats.Max(series),
	}
	if len(series) == 1 {
		s.Std = 0
		return s
	}

	const blocks = 10
	if len(series) < 2*blocks {
		s.StdErr = std / math.Sqrt(float64(len(series)))
		return s
	}
	size := len(series) / blocks
	means := make([]float64, blocks)
	for b := 0; b < blocks; b++ {
		means[b] = stat.Mean(series[b*size:(b+1)*size], nil)
	}
	s.StdErr = stat.StdDev(means, nil) / math.Sqrt(blocks)
	return s
}
