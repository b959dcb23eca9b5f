package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/simscat/internal/analysis"
	"github.com/san-kum/simscat/internal/config"
	"github.com/san-kum/simscat/internal/md"
	"github.com/san-kum/simscat/internal/scattering"
	"github.com/san-kum/simscat/internal/storage"
	"github.com/spf13/cobra"
)

var (
	quantity string
	skip     int

	rdfBins int
	rdfRMax float64

	qMin       float64
	qMax       float64
	qN         int
	qLog       bool
	formFactor string
	binWidth   float64
	lastFrames int
	exact      bool
)

func listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tN\tT (K)\tINTEGRATOR\tTHERMOSTAT\tSTEPS\tDRIFT\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.1f\t%s\t%s\t%d\t%.2e\t%s\n",
			r.ID, r.Name, r.Particles, r.Temperature, r.Integrator, r.Thermostat,
			r.Steps, r.EnergyDrift, r.Timestamp.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRun(cmd.Context(), args[0], func(st *storage.Store, runID string) error {
				if err := st.Delete(cmd.Context(), runID); err != nil {
					return err
				}
				logger.Info("run deleted", "id", runID)
				fmt.Printf("deleted %s\n", runID)
				return nil
			})
		},
	}
}

func reindexCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "rebuild the run catalogue from the run directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()
			n, err := st.Reindex(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("indexed %d runs\n", n)
			return nil
		},
	}
}

func plotCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a thermodynamic series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().StringVar(&quantity, "quantity", "total", "kinetic, potential, total, temperature or pressure")
	return cmd
}

// thermoSeries picks one column of a thermo log.
func thermoSeries(th []md.Thermo, name string) ([]float64, string, error) {
	pick := map[string]struct {
		unit string
		get  func(md.Thermo) float64
	}{
		"kinetic":     {"eV", func(t md.Thermo) float64 { return t.Kinetic }},
		"potential":   {"eV", func(t md.Thermo) float64 { return t.Potential }},
		"total":       {"eV", func(t md.Thermo) float64 { return t.Total }},
		"temperature": {"K", func(t md.Thermo) float64 { return t.Temperature }},
		"pressure":    {"bar", func(t md.Thermo) float64 { return t.Pressure }},
	}
	p, ok := pick[name]
	if !ok {
		return nil, "", fmt.Errorf("unknown quantity: %s", name)
	}
	out := make([]float64, len(th))
	for i, t := range th {
		out[i] = p.get(t)
	}
	return out, p.unit, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	return withRun(cmd.Context(), args[0], func(st *storage.Store, runID string) error {
		times, th, err := st.LoadThermo(runID)
		if err != nil {
			return err
		}
		series, unit, err := thermoSeries(th, quantity)
		if err != nil {
			return err
		}
		if len(series) == 0 {
			return fmt.Errorf("run %s has no samples", runID)
		}
		s := analysis.Summarize(series)
		caption := fmt.Sprintf("%s (%s) over %.0f fs: mean %.4g, std %.3g", quantity, unit, times[len(times)-1], s.Mean, s.Std)
		fmt.Println(asciigraph.Plot(series, asciigraph.Height(15), asciigraph.Width(70), asciigraph.Caption(caption)))
		return nil
	})
}

// trajectory loads a run's frames and drops the first skip of them.
func trajectory(st *storage.Store, runID string, skip int) (*storage.Trajectory, md.Box, error) {
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, md.Box{}, err
	}
	if skip < 0 || skip >= len(traj.Positions) {
		return nil, md.Box{}, fmt.Errorf("--skip %d leaves no frames (run has %d)", skip, len(traj.Positions))
	}
	traj.Positions = traj.Positions[skip:]
	traj.Times = traj.Times[skip:]
	if traj.Velocities != nil {
		traj.Velocities = traj.Velocities[skip:]
	}
	return traj, md.Box{L: traj.Box}, nil
}

// uniform drops trailing frames off the sampling grid.
func uniform(traj *storage.Trajectory) {
	n := analysis.EvenlySpaced(traj.Times)
	traj.Positions = traj.Positions[:n]
	traj.Times = traj.Times[:n]
	if traj.Velocities != nil {
		traj.Velocities = traj.Velocities[:n]
	}
}

func rdfCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rdf [run_id]",
		Short: "radial distribution function of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  runRDF,
	}
	cmd.Flags().IntVar(&rdfBins, "bins", 100, "histogram bins")
	cmd.Flags().Float64Var(&rdfRMax, "rmax", 0, "largest distance in Å (default: half the box)")
	cmd.Flags().IntVar(&skip, "skip", 0, "equilibration frames to drop")
	return cmd
}

func computeRDF(st *storage.Store, runID string) (analysis.RDFResult, error) {
	traj, box, err := trajectory(st, runID, skip)
	if err != nil {
		return analysis.RDFResult{}, err
	}
	rmax := rdfRMax
	if rmax <= 0 {
		rmax = box.MinSide() / 2
	}
	return analysis.RDF(traj.Positions, box, rdfBins, rmax)
}

func runRDF(cmd *cobra.Command, args []string) error {
	return withRun(cmd.Context(), args[0], func(st *storage.Store, runID string) error {
		res, err := computeRDF(st, runID)
		if err != nil {
			return err
		}
		r, g := res.FirstPeak()
		fmt.Println(asciigraph.Plot(res.G, asciigraph.Height(15), asciigraph.Width(70),
			asciigraph.Caption(fmt.Sprintf("g(r), r up to %.2f Å", res.R[len(res.R)-1]))))
		if g > 0 {
			fmt.Printf("first peak: r = %.3f Å, g = %.3f\n", r, g)
		} else {
			fmt.Println("no peak above g = 1")
		}
		return nil
	})
}

func msdCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "msd [run_id]",
		Short: "mean squared displacement and diffusion coefficient",
		Args:  cobra.ExactArgs(1),
		RunE:  runMSD,
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "equilibration frames to drop")
	return cmd
}

func computeMSD(st *storage.Store, runID string) (lags, msd []float64, err error) {
	traj, box, err := trajectory(st, runID, skip)
	if err != nil {
		return nil, nil, err
	}
	uniform(traj)
	msd, err = analysis.MSD(traj.Positions, box)
	if err != nil {
		return nil, nil, err
	}
	lags = make([]float64, len(msd))
	for i := range lags {
		lags[i] = traj.Times[i] - traj.Times[0]
	}
	return lags, msd, nil
}

func runMSD(cmd *cobra.Command, args []string) error {
	return withRun(cmd.Context(), args[0], func(st *storage.Store, runID string) error {
		lags, msd, err := computeMSD(st, runID)
		if err != nil {
			return err
		}
		fmt.Println(asciigraph.Plot(msd, asciigraph.Height(15), asciigraph.Width(70),
			asciigraph.Caption(fmt.Sprintf("MSD (Å²) up to a lag of %.0f fs", lags[len(lags)-1]))))
		d, err := analysis.DiffusionCoefficient(msd, lags)
		if err != nil {
			return err
		}
		// 1 Å²/fs = 1e-5 m²/s
		fmt.Printf("D = %.4e Å²/fs = %.4e m²/s\n", d, d*1e-5)
		return nil
	})
}

func vdosCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vdos [run_id]",
		Short: "vibrational density of states from the velocity autocorrelation",
		Args:  cobra.ExactArgs(1),
		RunE:  runVDOS,
	}
	cmd.Flags().IntVar(&skip, "skip", 0, "equilibration frames to drop")
	return cmd
}

func computeVDOS(st *storage.Store, runID string) (freqs, dos []float64, err error) {
	traj, _, err := trajectory(st, runID, skip)
	if err != nil {
		return nil, nil, err
	}
	uniform(traj)
	if traj.Velocities == nil {
		return nil, nil, fmt.Errorf("run %s has no stored velocities", runID)
	}
	if len(traj.Times) < 2 {
		return nil, nil, analysis.ErrNoFrames
	}
	return analysis.VDOS(traj.Velocities, traj.Times[1]-traj.Times[0])
}

func runVDOS(cmd *cobra.Command, args []string) error {
	return withRun(cmd.Context(), args[0], func(st *storage.Store, runID string) error {
		freqs, dos, err := computeVDOS(st, runID)
		if err != nil {
			return err
		}
		peak := 0
		for i := 1; i < len(dos); i++ {
			if dos[i] > dos[peak] {
				peak = i
			}
		}
		fmt.Println(asciigraph.Plot(dos, asciigraph.Height(15), asciigraph.Width(70),
			asciigraph.Caption(fmt.Sprintf("VDOS, 0 to %.2f THz", freqs[len(freqs)-1]))))
		fmt.Printf("peak at %.3f THz\n", freqs[peak])
		return nil
	})
}

func scatterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scatter [run_id]",
		Short: "scattering profile of a run from the Debye equation",
		Args:  cobra.ExactArgs(1),
		RunE:  runScatter,
	}
	d := config.DefaultConfig().Scattering
	cmd.Flags().Float64Var(&qMin, "qmin", d.Q.Min, "smallest q (1/Å)")
	cmd.Flags().Float64Var(&qMax, "qmax", d.Q.Max, "largest q (1/Å)")
	cmd.Flags().IntVar(&qN, "nq", d.Q.N, "number of q points")
	cmd.Flags().BoolVar(&qLog, "log-q", d.Q.Log, "logarithmic q spacing")
	cmd.Flags().StringVar(&formFactor, "form-factor", d.FormFactor, "form factor (unit, argon)")
	cmd.Flags().Float64Var(&binWidth, "bin-width", d.BinWidth, "distance histogram bin width (Å)")
	cmd.Flags().IntVar(&lastFrames, "frames", 5, "number of final frames to average")
	cmd.Flags().BoolVar(&exact, "exact", false, "sum over every pair instead of the distance histogram")
	return cmd
}

// scatteringSettings starts from the run's stored config and applies the
// flags that were set explicitly.
func scatteringSettings(cmd *cobra.Command, meta *storage.RunMetadata) config.ScatteringConfig {
	s := config.DefaultConfig().Scattering
	if meta.Config != nil {
		s = meta.Config.Scattering
	}
	flags := cmd.Flags()
	if flags.Changed("qmin") {
		s.Q.Min = qMin
	}
	if flags.Changed("qmax") {
		s.Q.Max = qMax
	}
	if flags.Changed("nq") {
		s.Q.N = qN
	}
	if flags.Changed("log-q") {
		s.Q.Log = qLog
	}
	if flags.Changed("form-factor") {
		s.FormFactor = formFactor
	}
	if flags.Changed("bin-width") {
		s.BinWidth = binWidth
	}
	return s
}

func computeScattering(ctx context.Context, st *storage.Store, runID string, s config.ScatteringConfig) (scattering.Profile, error) {
	ff, err := scattering.ParseFormFactor(s.FormFactor)
	if err != nil {
		return scattering.Profile{}, err
	}
	qs, err := s.Q.Values()
	if err != nil {
		return scattering.Profile{}, err
	}
	traj, box, err := trajectory(st, runID, 0)
	if err != nil {
		return scattering.Profile{}, err
	}
	frames := traj.Positions
	if lastFrames > 0 && lastFrames < len(frames) {
		frames = frames[len(frames)-lastFrames:]
	}
	opts := scattering.Options{Box: &box}

	var p scattering.Profile
	if exact {
		p, err = scattering.Frames(ctx, frames, ff, qs, opts)
	} else {
		profiles := make([]scattering.Profile, 0, len(frames))
		for _, pts := range frames {
			fp, ferr := scattering.DebyeHistogram(ctx, pts, ff, s.BinWidth, qs, opts)
			if ferr != nil {
				return scattering.Profile{}, ferr
			}
			profiles = append(profiles, fp)
		}
		p, err = scattering.Average(profiles)
	}
	if err != nil {
		return scattering.Profile{}, err
	}
	return scattering.Normalise(p, len(frames[0]), ff), nil
}

func runScatter(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	return withRun(ctx, args[0], func(st *storage.Store, runID string) error {
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		s := scatteringSettings(cmd, meta)
		logger.Info("computing scattering", "id", runID, "q", s.Q, "form_factor", s.FormFactor, "exact", exact)

		p, err := computeScattering(ctx, st, runID, s)
		if err != nil {
			return err
		}
		if err := st.SaveProfile(runID, "debye", p); err != nil {
			return err
		}

		peak := 0
		for i := range p.I {
			if p.I[i] > p.I[peak] {
				peak = i
			}
		}
		fmt.Println(asciigraph.Plot(p.I, asciigraph.Height(15), asciigraph.Width(70),
			asciigraph.Caption(fmt.Sprintf("I(q)/Nf², q from %.2f to %.2f 1/Å", p.Q[0], p.Q[len(p.Q)-1]))))
		fmt.Printf("strongest peak: q = %.3f 1/Å (d = %.3f Å), I = %.3f\n", p.Q[peak], 2*math.Pi/p.Q[peak], p.I[peak])
		return nil
	})
}

// storedProfile returns the saved Debye profile, or computes one with the
// run's own settings when none was saved yet.
func storedProfile(ctx context.Context, st *storage.Store, runID string) (scattering.Profile, error) {
	p, err := st.LoadProfile(runID, "debye")
	if err == nil || !errors.Is(err, storage.ErrNotFound) {
		return p, err
	}
	meta, err := st.Load(runID)
	if err != nil {
		return scattering.Profile{}, err
	}
	s := config.DefaultConfig().Scattering
	if meta.Config != nil {
		s = meta.Config.Scattering
	}
	return computeScattering(ctx, st, runID, s)
}
