package fit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/simscat/internal/potential"
)

var (
	ErrTooFewSamples  = errors.New("fit: not enough samples for the number of parameters")
	ErrBadUncertainty = errors.New("fit: uncertainties must be positive")
	ErrBadDistance    = errors.New("fit: distances must be positive")
	ErrSingular       = errors.New("fit: normal equations are singular")
)

// Sample is one reference point: separation, energy and the one-sigma
// uncertainty of the energy.
type Sample struct {
	R     float64 `json:"r"`
	E     float64 `json:"energy"`
	Sigma float64 `json:"uncertainty"`
}

type Dataset struct {
	Name    string          `json:"name"`
	Units   potential.Units `json:"units"`
	Samples []Sample        `json:"samples"`
}

// LessonDataset is the six-point argon reference set used in the
// parameterisation lesson, in metres and joules.
func LessonDataset() Dataset {
	return Dataset{
		Name:  "lesson-argon",
		Units: potential.SI,
		Samples: []Sample{
			{R: 3.40e-10, E: -5.12e-23, Sigma: 1.3e-23},
			{R: 3.60e-10, E: -1.10e-21, Sigma: 6.5e-23},
			{R: 3.80e-10, E: -1.35e-21, Sigma: 7.8e-23},
			{R: 4.00e-10, E: -1.24e-21, Sigma: 7.2e-23},
			{R: 4.50e-10, E: -8.07e-22, Sigma: 5.0e-23},
			{R: 5.00e-10, E: -4.67e-22, Sigma: 3.3e-23},
		},
	}
}

func (d Dataset) Validate(minSamples int) error {
	if len(d.Samples) < minSamples {
		return fmt.Errorf("%w: have %d, need %d", ErrTooFewSamples, len(d.Samples), minSamples)
	}
	for i, s := range d.Samples {
		if !(s.R > 0) {
			return fmt.Errorf("%w: sample %d has r=%g", ErrBadDistance, i, s.R)
		}
		if !(s.Sigma > 0) {
			return fmt.Errorf("%w: sample %d has uncertainty %g", ErrBadUncertainty, i, s.Sigma)
		}
	}
	return nil
}

// LoadCSV reads r,energy,uncertainty rows. A leading non-numeric row is
// treated as a header. Blank lines and lines starting with '#' are skipped.
func LoadCSV(r io.Reader, name string, units potential.Units) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return Dataset{}, fmt.Errorf("read csv: %w", err)
	}

	ds := Dataset{Name: name, Units: units}
	for i, rec := range records {
		if len(rec) < 3 {
			return Dataset{}, fmt.Errorf("line %d: expected 3 columns, got %d", i+1, len(rec))
		}
		vals := make([]float64, 3)
		for j := 0; j < 3; j++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[j]), 64)
			if err != nil {
				if i == 0 {
					vals = nil
					break
				}
				return Dataset{}, fmt.Errorf("line %d column %d: %w", i+1, j+1, err)
			}
			vals[j] = v
		}
		if vals == nil {
			continue
		}
		ds.Samples = append(ds.Samples, Sample{R: vals[0], E: vals[1], Sigma: vals[2]})
	}
	return ds, nil
}

// scales picks a length and energy scale that bring the samples close to
// unity. Fitting r⁻¹² terms in raw SI units overflows float64.
func (d Dataset) scales() (r0, e0 float64) {
	r0 = d.Samples[0].R
	for _, s := range d.Samples {
		if s.R < r0 {
			r0 = s.R
		}
		if a := abs(s.E); a > e0 {
			e0 = a
		}
		if s.Sigma > e0 {
			e0 = s.Sigma
		}
	}
	return r0, e0
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
