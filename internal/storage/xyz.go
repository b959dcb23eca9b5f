package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Trajectory is the sampled particle data of a run. Velocities may be nil
// for files written by other programs.
type Trajectory struct {
	Box        [3]float64
	Times      []float64
	Positions  [][][3]float64
	Velocities [][][3]float64
}

const element = "Ar"

func writeXYZ(path string, traj Trajectory) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeFile(f, &err)

	w := bufio.NewWriter(f)
	if err := WriteXYZ(w, traj); err != nil {
		return err
	}
	return w.Flush()
}

// WriteXYZ writes traj in extended XYZ: a count line, a comment line with
// the lattice and time, then one "Ar x y z vx vy vz" line per atom.
func WriteXYZ(w io.Writer, traj Trajectory) error {
	withVel := traj.Velocities != nil
	props := "species:S:1:pos:R:3"
	if withVel {
		props += ":vel:R:3"
	}
	l := traj.Box
	for f, pts := range traj.Positions {
		t := 0.0
		if f < len(traj.Times) {
			t = traj.Times[f]
		}
		if _, err := fmt.Fprintf(w, "%d\nLattice=\"%g 0 0 0 %g 0 0 0 %g\" Properties=%s Time=%g\n",
			len(pts), l[0], l[1], l[2], props, t); err != nil {
			return err
		}
		for i, p := range pts {
			var err error
			if withVel {
				v := traj.Velocities[f][i]
				_, err = fmt.Fprintf(w, "%s %.8f %.8f %.8f %.8e %.8e %.8e\n", element, p[0], p[1], p[2], v[0], v[1], v[2])
			} else {
				_, err = fmt.Fprintf(w, "%s %.8f %.8f %.8f\n", element, p[0], p[1], p[2])
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	f, err := os.Open(filepath.Join(s.Dir(runID), trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
		}
		return nil, err
	}
	defer f.Close()
	return ReadXYZ(f)
}

// ReadXYZ parses plain or extended XYZ. Velocities are kept only when every
// atom line carries them.
func ReadXYZ(r io.Reader) (*Trajectory, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	traj := &Trajectory{}
	withVel := true
	line := 0

	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		line++
		return sc.Text(), true
	}

	for {
		head, ok := next()
		if !ok {
			break
		}
		head = strings.TrimSpace(head)
		if head == "" {
			continue
		}
		n, err := strconv.Atoi(head)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("xyz line %d: bad atom count %q", line, head)
		}
		comment, ok := next()
		if !ok {
			return nil, fmt.Errorf("xyz line %d: missing comment line", line)
		}
		box, t := parseComment(comment)
		if len(traj.Positions) == 0 {
			traj.Box = box
		}
		traj.Times = append(traj.Times, t)

		pts := make([][3]float64, n)
		vel := make([][3]float64, n)
		for i := 0; i < n; i++ {
			text, ok := next()
			if !ok {
				return nil, fmt.Errorf("xyz: frame %d truncated after %d atoms", len(traj.Positions), i)
			}
			fields := strings.Fields(text)
			if len(fields) < 4 {
				return nil, fmt.Errorf("xyz line %d: want at least 4 fields", line)
			}
			vals, err := parseFloats(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("xyz line %d: %w", line, err)
			}
			pts[i] = [3]float64{vals[0], vals[1], vals[2]}
			if len(vals) >= 6 {
				vel[i] = [3]float64{vals[3], vals[4], vals[5]}
			} else {
				withVel = false
			}
		}
		traj.Positions = append(traj.Positions, pts)
		traj.Velocities = append(traj.Velocities, vel)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if !withVel || len(traj.Positions) == 0 {
		traj.Velocities = nil
	}
	return traj, nil
}

// parseComment extracts the orthorhombic lattice diagonal and Time from an
// extended XYZ comment line; missing keys yield zeros.
func parseComment(s string) ([3]float64, float64) {
	var box [3]float64
	var t float64
	if i := strings.Index(s, `Lattice="`); i >= 0 {
		rest := s[i+len(`Lattice="`):]
		if j := strings.IndexByte(rest, '"'); j >= 0 {
			if vals, err := parseFloats(strings.Fields(rest[:j])); err == nil && len(vals) == 9 {
				box = [3]float64{vals[0], vals[4], vals[8]}
			}
		}
	}
	for _, field := range strings.Fields(s) {
		if v, ok := strings.CutPrefix(field, "Time="); ok {
			t, _ = strconv.ParseFloat(v, 64)
		}
	}
	return box, t
}
