package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/simscat/internal/fit"
	"github.com/san-kum/simscat/internal/potential"
	"github.com/spf13/cobra"
)

var (
	fitData  string
	fitForm  string
	fitUnits string
	fitPlot  bool

	mixRule    string
	mixSigma   [2]float64
	mixEpsilon [2]float64
)

func fitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "fit a pair potential to reference energies",
		Args:  cobra.NoArgs,
		RunE:  runFit,
	}
	cmd.Flags().StringVar(&fitData, "data", "", "csv of r,energy,uncertainty (default: lesson dataset)")
	cmd.Flags().StringVar(&fitForm, "form", "lj", "potential form (lj, buckingham)")
	cmd.Flags().StringVar(&fitUnits, "units", "si", "units of the csv (si, lab)")
	cmd.Flags().BoolVar(&fitPlot, "plot", true, "plot the fitted curve")
	return cmd
}

func loadDataset() (fit.Dataset, error) {
	if fitData == "" {
		return fit.LessonDataset(), nil
	}
	units, ok := potential.UnitsByName(fitUnits)
	if !ok {
		return fit.Dataset{}, fmt.Errorf("unknown units: %s", fitUnits)
	}
	f, err := os.Open(fitData)
	if err != nil {
		return fit.Dataset{}, err
	}
	defer f.Close()
	return fit.LoadCSV(f, filepath.Base(fitData), units)
}

func runFit(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset()
	if err != nil {
		return err
	}
	logger.Info("fitting", "dataset", ds.Name, "samples", len(ds.Samples), "form", fitForm)

	var model potential.Pair
	switch fitForm {
	case "lj":
		res, err := fit.FitLJ(ds)
		if err != nil {
			return err
		}
		model = res.Potential()
		printLJ(res)
		fmt.Printf("chi2      %.4f (reduced %.4f, dof %d)\n", res.ChiSq, res.ReducedChiSq, res.Dof)
	case "buckingham":
		res, err := fit.FitBuckingham(cmd.Context(), ds, nil)
		if err != nil {
			return err
		}
		model = res.Params
		fmt.Printf("fit       %s [%s units]\n", res.Params, ds.Units.Name)
		fmt.Printf("chi2      %.4f (reduced %.4f, dof %d, %d evaluations)\n",
			res.ChiSq, res.ReducedChiSq, res.Dof, res.Evaluations)
	default:
		return fmt.Errorf("unknown form: %s", fitForm)
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "r\tenergy\tmodel\tresidual")
	residuals := fit.Residuals(model, ds)
	for i, s := range ds.Samples {
		fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t%+.3f\n", s.R, s.E, model.Energy(s.R), residuals[i])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if fitPlot {
		fmt.Println()
		fmt.Println(asciigraph.Plot(curve(model, ds), asciigraph.Height(12), asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("fitted %s over the sampled range", fitForm))))
	}
	return nil
}

func printLJ(res fit.LJResult) {
	fmt.Printf("A         %.4e ± %.2e\n", res.A, res.ErrA)
	fmt.Printf("B         %.4e ± %.2e\n", res.B, res.ErrB)

	p := res.Potential()
	sigma, err := p.Sigma()
	if err != nil {
		fmt.Printf("sigma     n/a (%v)\n", err)
		return
	}
	eps, _ := p.Epsilon()
	fmt.Printf("sigma     %.4e\n", sigma)
	fmt.Printf("epsilon   %.4e\n", eps)

	if res.Units != potential.Lab {
		lab := p.Convert(res.Units, potential.Lab)
		ls, _ := lab.Sigma()
		le, _ := lab.Epsilon()
		fmt.Printf("lab units sigma %.4f Å, epsilon %.5f eV (%.1f K)\n", ls, le, le/potential.BoltzmannEV)
	}
}

// curve samples the model between the smallest and largest distances of ds.
func curve(p potential.Pair, ds fit.Dataset) []float64 {
	lo, hi := ds.Samples[0].R, ds.Samples[0].R
	for _, s := range ds.Samples {
		lo = min(lo, s.R)
		hi = max(hi, s.R)
	}
	const n = 60
	out := make([]float64, n)
	for i := range out {
		r := lo + (hi-lo)*float64(i)/float64(n-1)
		out[i] = p.Energy(r)
	}
	return out
}

func mixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mix",
		Short: "combine two Lennard-Jones species with a mixing rule",
		Args:  cobra.NoArgs,
		RunE:  runMix,
	}
	cmd.Flags().StringVar(&mixRule, "rule", "lorentz-berthelot", "mixing rule (lorentz-berthelot, geometric)")
	cmd.Flags().Float64Var(&mixSigma[0], "sigma1", 3.405, "sigma of species 1 (Å)")
	cmd.Flags().Float64Var(&mixEpsilon[0], "eps1", 0.0103, "epsilon of species 1 (eV)")
	cmd.Flags().Float64Var(&mixSigma[1], "sigma2", 3.63, "sigma of species 2 (Å)")
	cmd.Flags().Float64Var(&mixEpsilon[1], "eps2", 0.0141, "epsilon of species 2 (eV)")
	return cmd
}

func runMix(cmd *cobra.Command, args []string) error {
	rule, err := potential.ParseRule(mixRule)
	if err != nil {
		return err
	}
	sigma, eps, err := potential.Mix(rule, mixSigma[0], mixEpsilon[0], mixSigma[1], mixEpsilon[1])
	if err != nil {
		return err
	}
	lj := potential.FromSigmaEpsilon(sigma, eps)
	rmin, _ := lj.Minimum()

	fmt.Printf("rule      %s\n", rule)
	fmt.Printf("sigma     %.4f Å\n", sigma)
	fmt.Printf("epsilon   %.5f eV\n", eps)
	fmt.Printf("r_min     %.4f Å\n", rmin)
	fmt.Printf("%s [lab units]\n", lj)
	return nil
}
