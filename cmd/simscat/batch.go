package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/san-kum/simscat/internal/automation"
	"github.com/san-kum/simscat/internal/experiment"
	"github.com/spf13/cobra"
)

var (
	sweepParam    string
	sweepMin      float64
	sweepMax      float64
	sweepN        int
	replicaCount  int
	scenarioStore bool
)

func sweepCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a preset over a range of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(cmd)
	cmd.Flags().StringVar(&sweepParam, "param", "temperature", fmt.Sprintf("parameter to vary %v", automation.SweepParams))
	cmd.Flags().Float64Var(&sweepMin, "min", 40, "first value")
	cmd.Flags().Float64Var(&sweepMax, "max", 160, "last value")
	cmd.Flags().IntVar(&sweepN, "n", 4, "number of runs")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := loadRunConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()

	points, err := automation.RunSweep(ctx, automation.Sweep{
		Base: base, Param: sweepParam, Min: sweepMin, Max: sweepMax, N: sweepN,
	}, logger)
	if err != nil && len(points) == 0 {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t<T> (K)\t<P> (bar)\t<PE> (eV)\tD (Å²/fs)\tDRIFT\n", sweepParam)
	for _, p := range points {
		if !p.Stable() {
			fmt.Fprintf(w, "%g\terror: %v\t\t\t\t\n", p.Value, p.Err)
			continue
		}
		fmt.Fprintf(w, "%g\t%.2f\t%.2f\t%.4f\t%.3e\t%.2e\n",
			p.Value, p.MeanTemperature, p.MeanPressure, p.MeanPotential, p.Diffusion, p.Drift)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

func replicasCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replicas [preset]",
		Short: "repeat a preset with consecutive seeds and report the spread",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReplicas,
	}
	addRunFlags(cmd)
	cmd.Flags().IntVar(&replicaCount, "n", 5, "number of replicas")
	return cmd
}

func runReplicas(cmd *cobra.Command, args []string) error {
	base, err := loadRunConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()

	points, err := automation.RunReplicas(ctx, base, replicaCount, logger)
	if err != nil {
		return err
	}
	temp, press, drift, stable := automation.ReplicaStats(points)
	fmt.Printf("%d of %d replicas stable\n", stable, len(points))
	fmt.Printf("<T>     %.2f ± %.2f K\n", temp.Mean, temp.Std)
	fmt.Printf("<P>     %.2f ± %.2f bar\n", press.Mean, press.Std)
	fmt.Printf("drift   %.2e (max %.2e)\n", drift.Mean, drift.Max)
	return nil
}

func scenarioCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run every step of a scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	cmd.Flags().BoolVar(&scenarioStore, "save", true, "store each run")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(cmd)
	defer cancel()

	var sink automation.Sink
	if scenarioStore {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		sink = func(i int, out *experiment.Output) error {
			id, err := st.Save(ctx, out)
			if err != nil {
				return err
			}
			fmt.Printf("step %d: %s (drift %.2e)\n", i+1, id, out.Drift)
			return nil
		}
	}

	outs, err := automation.RunScenario(ctx, sc, logger, sink)
	logger.Info("scenario finished", "scenario", sc.Name, "completed", len(outs), "steps", len(sc.Steps))
	return err
}
