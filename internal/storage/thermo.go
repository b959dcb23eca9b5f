package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/san-kum/simscat/internal/md"
	"github.com/san-kum/simscat/internal/scattering"
)

var thermoHeader = []string{"time", "kinetic", "potential", "total", "temperature", "pressure"}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeThermo(path string, times []float64, thermo []md.Thermo) (err error) {
	if len(times) != len(thermo) {
		return fmt.Errorf("thermo: %d times for %d rows", len(times), len(thermo))
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	w := csv.NewWriter(f)
	if err := w.Write(thermoHeader); err != nil {
		return err
	}
	for i, th := range thermo {
		row := []string{
			formatFloat(times[i]),
			formatFloat(th.Kinetic),
			formatFloat(th.Potential),
			formatFloat(th.Total),
			formatFloat(th.Temperature),
			formatFloat(th.Pressure),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadThermo reads the per-frame thermodynamics of a run.
func (s *Store) LoadThermo(runID string) ([]float64, []md.Thermo, error) {
	records, err := readCSV(filepath.Join(s.Dir(runID), thermoFile))
	if err != nil {
		return nil, nil, err
	}
	times := make([]float64, 0, len(records))
	rows := make([]md.Thermo, 0, len(records))
	for i, rec := range records {
		if len(rec) != len(thermoHeader) {
			return nil, nil, fmt.Errorf("thermo row %d: %d fields", i+1, len(rec))
		}
		vals, err := parseFloats(rec)
		if err != nil {
			return nil, nil, fmt.Errorf("thermo row %d: %w", i+1, err)
		}
		times = append(times, vals[0])
		rows = append(rows, md.Thermo{
			Kinetic:     vals[1],
			Potential:   vals[2],
			Total:       vals[3],
			Temperature: vals[4],
			Pressure:    vals[5],
		})
	}
	return times, rows, nil
}

// SaveProfile stores a scattering profile as scattering_<name>.csv in the
// run directory.
func (s *Store) SaveProfile(runID, name string, p scattering.Profile) (err error) {
	if _, err := os.Stat(s.Dir(runID)); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	f, err := os.Create(s.profilePath(runID, name))
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	w := csv.NewWriter(f)
	if err := w.Write([]string{"q", "intensity"}); err != nil {
		return err
	}
	for k := range p.Q {
		if err := w.Write([]string{formatFloat(p.Q[k]), formatFloat(p.I[k])}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) LoadProfile(runID, name string) (scattering.Profile, error) {
	records, err := readCSV(s.profilePath(runID, name))
	if err != nil {
		return scattering.Profile{}, err
	}
	p := scattering.Profile{Q: make([]float64, 0, len(records)), I: make([]float64, 0, len(records))}
	for i, rec := range records {
		vals, err := parseFloats(rec)
		if err != nil || len(vals) != 2 {
			return scattering.Profile{}, fmt.Errorf("profile row %d: malformed", i+1)
		}
		p.Q = append(p.Q, vals[0])
		p.I = append(p.I, vals[1])
	}
	return p, nil
}

func (s *Store) profilePath(runID, name string) string {
	if name == "" {
		name = "debye"
	}
	return filepath.Join(s.Dir(runID), "scattering_"+name+".csv")
}

// readCSV returns every record after the header.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

func parseFloats(rec []string) ([]float64, error) {
	out := make([]float64, len(rec))
	for i, s := range rec {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
