package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/simscat/internal/export"
	"github.com/san-kum/simscat/internal/md"
	"github.com/san-kum/simscat/internal/storage"
	"github.com/spf13/cobra"
)

var (
	outPath   string
	csvWhat   string
	imageWhat string
	width     int
	height    int
	xyzStride int
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// create opens path for writing, or stdout for "" and "-".
func create(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// writeTo streams fn into path and reports where the output went.
func writeTo(path string, fn func(w io.Writer) error) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if path != "" && path != "-" {
		logger.Info("exported", "path", path)
	}
	return nil
}

func exportCommands() []*cobra.Command {
	csvCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export thermo, rdf, msd, vdos or scattering data as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	csvCmd.Flags().StringVar(&csvWhat, "what", "thermo", "thermo, rdf, msd, vdos or scattering")

	jsonCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and thermo log as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	xyzCmd := &cobra.Command{
		Use:   "export-xyz [run_id]",
		Short: "export the trajectory as extended XYZ",
		Args:  cobra.ExactArgs(1),
		RunE:  exportXYZ,
	}
	xyzCmd.Flags().IntVar(&xyzStride, "every", 1, "keep every n-th frame")

	xlsxCmd := &cobra.Command{
		Use:   "export-xlsx [run_id]",
		Short: "export a workbook with thermo, rdf and scattering sheets",
		Args:  cobra.ExactArgs(1),
		RunE:  exportXLSX,
	}

	svgCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a plot or snapshot as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return exportImage(cmd, args[0], "svg") },
	}
	pngCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render a plot or snapshot as PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  func(cmd *cobra.Command, args []string) error { return exportImage(cmd, args[0], "png") },
	}
	for _, c := range []*cobra.Command{svgCmd, pngCmd} {
		c.Flags().StringVar(&imageWhat, "what", "energy", "energy, temperature, pressure, rdf, msd, vdos, scattering or snapshot")
		c.Flags().IntVar(&width, "width", 800, "image width (px)")
		c.Flags().IntVar(&height, "height", 500, "image height (px)")
	}

	cmds := []*cobra.Command{csvCmd, jsonCmd, xyzCmd, xlsxCmd, svgCmd, pngCmd}
	for _, c := range cmds {
		c.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout, or <run>.<ext> for binary formats)")
	}
	return cmds
}

func thermoTable(times []float64, th []md.Thermo) export.Table {
	cols := make([][]float64, 6)
	for i := range cols {
		cols[i] = make([]float64, len(th))
	}
	for i, t := range th {
		cols[0][i] = times[i]
		cols[1][i] = t.Kinetic
		cols[2][i] = t.Potential
		cols[3][i] = t.Total
		cols[4][i] = t.Temperature
		cols[5][i] = t.Pressure
	}
	return export.Table{
		Name:    "thermo",
		Headers: []string{"time_fs", "kinetic_ev", "potential_ev", "total_ev", "temperature_k", "pressure_bar"},
		Columns: cols,
	}
}

// dataTable computes the named data set of a run.
func dataTable(ctx context.Context, st *storage.Store, runID, name string) (export.Table, error) {
	switch name {
	case "thermo":
		times, th, err := st.LoadThermo(runID)
		if err != nil {
			return export.Table{}, err
		}
		return thermoTable(times, th), nil
	case "rdf":
		res, err := computeRDF(st, runID)
		if err != nil {
			return export.Table{}, err
		}
		return export.Table{Name: "rdf", Headers: []string{"r_angstrom", "g"}, Columns: [][]float64{res.R, res.G}}, nil
	case "msd":
		lags, msd, err := computeMSD(st, runID)
		if err != nil {
			return export.Table{}, err
		}
		return export.Table{Name: "msd", Headers: []string{"lag_fs", "msd_angstrom2"}, Columns: [][]float64{lags, msd}}, nil
	case "vdos":
		freqs, dos, err := computeVDOS(st, runID)
		if err != nil {
			return export.Table{}, err
		}
		return export.Table{Name: "vdos", Headers: []string{"frequency_thz", "dos"}, Columns: [][]float64{freqs, dos}}, nil
	case "scattering":
		p, err := storedProfile(ctx, st, runID)
		if err != nil {
			return export.Table{}, err
		}
		return export.Table{Name: "scattering", Headers: []string{"q_inv_angstrom", "intensity"}, Columns: [][]float64{p.Q, p.I}}, nil
	}
	return export.Table{}, fmt.Errorf("unknown data set: %s", name)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	return withRun(cmd.Context(), args[0], func(st *storage.Store, runID string) error {
		t, err := dataTable(cmd.Context(), st, runID, csvWhat)
		if err != nil {
			return err
		}
		return writeTo(outPath, func(w io.Writer) error { return export.CSV(w, t) })
	})
}

func exportJSON(cmd *cobra.Command, args []string) error {
	return withRun(cmd.Context(), args[0], func(st *storage.Store, runID string) error {
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		times, th, err := st.LoadThermo(runID)
		if err != nil {
			return err
		}
		doc := struct {
			Metadata *storage.RunMetadata `json:"metadata"`
			Times    []float64            `json:"times"`
			Thermo   []md.Thermo          `json:"thermo"`
		}{meta, times, th}
		return writeTo(outPath, func(w io.Writer) error { return export.JSON(w, doc) })
	})
}

func exportXYZ(cmd *cobra.Command, args []string) error {
	if xyzStride < 1 {
		return fmt.Errorf("--every must be at least 1")
	}
	return withRun(cmd.Context(), args[0], func(st *storage.Store, runID string) error {
		traj, err := st.LoadTrajectory(runID)
		if err != nil {
			return err
		}
		out := storage.Trajectory{Box: traj.Box}
		for i := 0; i < len(traj.Positions); i += xyzStride {
			out.Times = append(out.Times, traj.Times[i])
			out.Positions = append(out.Positions, traj.Positions[i])
			if traj.Velocities != nil {
				out.Velocities = append(out.Velocities, traj.Velocities[i])
			}
		}
		return writeTo(outPath, func(w io.Writer) error { return storage.WriteXYZ(w, out) })
	})
}

func exportXLSX(cmd *cobra.Command, args []string) error {
	return withRun(cmd.Context(), args[0], func(st *storage.Store, runID string) error {
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		var tables []export.Table
		for _, name := range []string{"thermo", "rdf", "scattering"} {
			t, err := dataTable(cmd.Context(), st, runID, name)
			if err != nil {
				if name == "thermo" {
					return err
				}
				logger.Warn("skipping sheet", "sheet", name, "error", err)
				continue
			}
			tables = append(tables, t)
		}

		info := [][2]string{
			{"id", meta.ID},
			{"name", meta.Name},
			{"created", meta.Timestamp.Format("2006-01-02 15:04:05")},
			{"particles", strconv.Itoa(meta.Particles)},
			{"temperature_k", fmt.Sprint(meta.Temperature)},
			{"integrator", meta.Integrator},
			{"thermostat", meta.Thermostat},
			{"dt_fs", fmt.Sprint(meta.Dt)},
			{"steps", strconv.Itoa(meta.Steps)},
			{"energy_drift", fmt.Sprint(meta.EnergyDrift)},
		}
		path := outPath
		if path == "" {
			path = runID + ".xlsx"
		}
		return writeTo(path, func(w io.Writer) error { return export.XLSX(w, tables, info) })
	})
}

// plotFor builds the named line plot of a run.
func plotFor(ctx context.Context, st *storage.Store, runID, name string) (export.Plot, error) {
	switch name {
	case "energy", "temperature", "pressure":
		times, th, err := st.LoadThermo(runID)
		if err != nil {
			return export.Plot{}, err
		}
		p := export.Plot{Title: runID, XLabel: "time (fs)"}
		cols := []string{name}
		p.YLabel = name
		if name == "energy" {
			cols = []string{"kinetic", "potential", "total"}
			p.YLabel = "energy (eV)"
		}
		for _, c := range cols {
			y, _, err := thermoSeries(th, c)
			if err != nil {
				return export.Plot{}, err
			}
			p.Series = append(p.Series, export.Series{Name: c, X: times, Y: y})
		}
		return p, nil
	case "rdf", "msd", "vdos", "scattering":
		t, err := dataTable(ctx, st, runID, name)
		if err != nil {
			return export.Plot{}, err
		}
		return export.Plot{
			Title:  fmt.Sprintf("%s %s", runID, name),
			XLabel: t.Headers[0],
			YLabel: t.Headers[1],
			Series: []export.Series{{Name: name, X: t.Columns[0], Y: t.Columns[1]}},
		}, nil
	}
	return export.Plot{}, fmt.Errorf("unknown plot: %s", name)
}

func exportImage(cmd *cobra.Command, prefix, format string) error {
	if width <= 0 || height <= 0 {
		return errors.New("--width and --height must be positive")
	}
	return withRun(cmd.Context(), prefix, func(st *storage.Store, runID string) error {
		path := outPath
		if path == "" {
			path = fmt.Sprintf("%s_%s.%s", runID, imageWhat, format)
		}

		if imageWhat == "snapshot" {
			traj, err := st.LoadTrajectory(runID)
			if err != nil {
				return err
			}
			if len(traj.Positions) == 0 {
				return fmt.Errorf("run %s has no frames", runID)
			}
			last := traj.Positions[len(traj.Positions)-1]
			size := min(width, height)
			return writeTo(path, func(w io.Writer) error {
				if format == "png" {
					return export.SnapshotPNG(w, last, traj.Box, size)
				}
				return export.SnapshotSVG(w, last, traj.Box, size)
			})
		}

		p, err := plotFor(cmd.Context(), st, runID, imageWhat)
		if err != nil {
			return err
		}
		return writeTo(path, func(w io.Writer) error {
			if format == "png" {
				return export.PNG(w, p, width, height)
			}
			return export.SVG(w, p, width, height)
		})
	})
}
