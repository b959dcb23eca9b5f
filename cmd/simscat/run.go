package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/simscat/internal/analysis"
	"github.com/san-kum/simscat/internal/config"
	"github.com/san-kum/simscat/internal/dynamo"
	"github.com/san-kum/simscat/internal/experiment"
	"github.com/san-kum/simscat/internal/md"
	"github.com/san-kum/simscat/internal/viz"
	"github.com/spf13/cobra"
)

var (
	configFile  string
	dt          float64
	duration    float64
	seed        int64
	integrator  string
	thermo      string
	particles   int
	temperature float64
	sampleEvery int
	saveConfig  string

	compareIntegrators []string
	benchSizes         []int
	benchSteps         int
)

// addRunFlags registers the config overrides shared by run and live.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (fs)")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (fs)")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&integrator, "integrator", "verlet", "integrator")
	cmd.Flags().StringVar(&thermo, "thermostat", "rescale", "thermostat (none, rescale, berendsen)")
	cmd.Flags().IntVar(&particles, "particles", 125, "number of atoms")
	cmd.Flags().Float64Var(&temperature, "temperature", config.DefaultTemperature, "target temperature (K)")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "steps between stored frames")
}

// loadRunConfig resolves a preset or config file and applies environment
// and flag overrides on top of it.
func loadRunConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case configFile != "":
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
	case len(args) > 0:
		if cfg = config.GetPreset(args[0]); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (have %s)", args[0], strings.Join(config.ListPresets(), ", "))
		}
	}

	envCfg.Apply(cfg)

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("thermostat") {
		cfg.Thermostat.Name = thermo
	}
	if flags.Changed("particles") {
		cfg.Particles = particles
		cfg.BoxLength = 0
		if cfg.Density <= 0 {
			return nil, fmt.Errorf("%w: --particles needs a density-based config", config.ErrInvalid)
		}
	}
	if flags.Changed("temperature") {
		cfg.Temperature = temperature
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	return cfg, cfg.Validate()
}

func runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a molecular dynamics simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(cmd)
	cmd.Flags().StringVar(&saveConfig, "save-config", "", "write the effective config to this path")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(cmd, args)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := signalContext(cmd)
	defer cancel()

	log := logger.With("name", cfg.Name, "particles", cfg.Particles, "integrator", cfg.Integrator)
	log.Info("starting run", "dt", cfg.Dt, "duration", cfg.Duration, "thermostat", cfg.Thermostat.Name)

	start := time.Now()
	out, runErr := experiment.Run(ctx, cfg)
	if out == nil {
		return runErr
	}
	if runErr != nil {
		log.Warn("run stopped early, saving partial output", "error", runErr, "steps", out.Steps)
	}

	runID, err := st.Save(ctx, out)
	if err != nil {
		return errors.Join(runErr, err)
	}
	log.Info("run saved", "id", runID, "elapsed", time.Since(start).Round(time.Millisecond))

	fmt.Printf("run: %s\n", runID)
	fmt.Printf("steps: %d, frames: %d\n", out.Steps, len(out.Frames))
	fmt.Printf("energy drift: %.3e\n", out.Drift)
	printThermoSummary(out.Thermo)
	printMetrics(out.Metrics)
	return runErr
}

func printThermoSummary(th []md.Thermo) {
	if len(th) == 0 {
		return
	}
	temps := make([]float64, len(th))
	press := make([]float64, len(th))
	for i, t := range th {
		temps[i] = t.Temperature
		press[i] = t.Pressure
	}
	ts := analysis.Summarize(temps)
	ps := analysis.Summarize(press)
	fmt.Printf("temperature: %.2f ± %.2f K\n", ts.Mean, ts.StdErr)
	fmt.Printf("pressure: %.2f ± %.2f bar\n", ps.Mean, ps.StdErr)
}

func printMetrics(m map[string]float64) {
	if len(m) == 0 {
		return
	}
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("metrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, m[name])
	}
}

func liveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && configFile == "" {
				return viz.Run(nil)
			}
			cfg, err := loadRunConfig(cmd, args)
			if err != nil {
				return err
			}
			exp, err := experiment.New(cfg, experiment.NewRegistry())
			if err != nil {
				return err
			}
			return viz.Run(exp)
		},
	}
	addRunFlags(cmd)
	return cmd
}

func presetsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list built-in simulation presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tN\tDENSITY\tT (K)\tINIT\tTHERMOSTAT\tDURATION (fs)")
			for _, name := range config.ListPresets() {
				c := config.GetPreset(name)
				th := c.Thermostat.Name
				if th == "" {
					th = "none"
				}
				fmt.Fprintf(w, "%s\t%d\t%.4f\t%.1f\t%s\t%s\t%.0f\n",
					name, c.Particles, c.Density, c.Temperature, c.Init, th, c.Duration)
			}
			return w.Flush()
		},
	}
}

func compareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [preset]",
		Short: "compare integrator energy conservation without a thermostat",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCompare,
	}
	addRunFlags(cmd)
	cmd.Flags().StringSliceVar(&compareIntegrators, "integrators", []string{"euler", "leapfrog", "rk4", "verlet"}, "integrators to compare")
	return cmd
}

func runCompare(cmd *cobra.Command, args []string) error {
	base, err := loadRunConfig(cmd, args)
	if err != nil {
		return err
	}
	base.Thermostat.Name = ""

	ctx, cancel := signalContext(cmd)
	defer cancel()

	fmt.Printf("comparing integrators on %s (N=%d, dt=%.2f fs, duration=%.0f fs)\n\n",
		base.Name, base.Particles, base.Dt, base.Duration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tENERGY DRIFT\tFINAL TOTAL (eV)\tVEL DEV (Å/fs)\tTIME (ms)")
	var ref dynamo.State
	for _, name := range compareIntegrators {
		cfg := base.Clone()
		cfg.Integrator = name

		start := time.Now()
		out, err := experiment.Run(ctx, cfg)
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\t\t\t\n", name, err)
			continue
		}
		final := math.NaN()
		if n := len(out.Thermo); n > 0 {
			final = out.Thermo[n-1].Total
		}
		last := out.Frames[len(out.Frames)-1]
		if ref == nil {
			ref = last
		}
		fmt.Fprintf(w, "%s\t%.3e\t%.6f\t%.3e\t%d\n",
			name, out.Drift, final, velocityDeviation(ref, last), elapsed.Milliseconds())
	}
	return w.Flush()
}

// velocityDeviation is the RMS per-particle difference between the final
// velocities of two runs started from the same state, in Å/fs. Positions
// are wrapped into the box so they are not compared.
func velocityDeviation(ref, x dynamo.State) float64 {
	d := dynamo.State(x.Velocities()).Sub(ref.Velocities())
	n := len(d) / 3
	if n == 0 {
		return 0
	}
	return d.Norm() / math.Sqrt(float64(n))
}

func benchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "measure force evaluation throughput against system size",
		Args:  cobra.NoArgs,
		RunE:  runBench,
	}
	cmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{108, 256, 500, 864}, "particle counts")
	cmd.Flags().IntVar(&benchSteps, "steps", 100, "steps per size")
	return cmd
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tSTEPS\tTIME (ms)\tSTEPS/S\tNS/PAIR")
	for _, n := range benchSizes {
		cfg := config.DefaultConfig()
		cfg.Name = fmt.Sprintf("bench-%d", n)
		cfg.Particles = n
		cfg.Init = "fcc"
		cfg.Thermostat.Name = ""
		cfg.Duration = float64(benchSteps) * cfg.Dt
		cfg.SampleEvery = benchSteps
		if side := md.BoxForDensity(n, cfg.Density).MinSide(); side <= 2*cfg.Cutoff {
			cfg.Cutoff = 0.49 * side
		}

		start := time.Now()
		out, err := experiment.Run(ctx, cfg)
		if err != nil {
			return fmt.Errorf("bench n=%d: %w", n, err)
		}
		elapsed := time.Since(start)

		rate := float64(out.Steps) / elapsed.Seconds()
		pairs := float64(n*(n-1)/2) * float64(out.Steps)
		fmt.Fprintf(w, "%d\t%d\t%d\t%.1f\t%.2f\n",
			n, out.Steps, elapsed.Milliseconds(), rate, float64(elapsed.Nanoseconds())/pairs)
		logger.Debug("bench size done", "n", n, "elapsed", elapsed)
	}
	return w.Flush()
}
