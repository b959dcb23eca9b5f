package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/san-kum/simscat/internal/config"
	"github.com/san-kum/simscat/internal/dynamo"
	"github.com/san-kum/simscat/internal/logging"
	"github.com/san-kum/simscat/internal/storage"
	"github.com/san-kum/simscat/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	logMode string
	workers int

	envCfg config.Env
	logger = logging.Nop()
)

// main registers the commands and runs the root command. Without a
// subcommand it opens the interactive preset menu.
func main() {
	var err error
	envCfg, err = config.ParseEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:               "simscat",
		Short:             "pair potential fitting, Lennard-Jones MD and Debye scattering",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) { logger.Sync() },
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.Run(nil)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", envCfg.DataDir, "run directory")
	rootCmd.PersistentFlags().StringVar(&logMode, "log", envCfg.LogMode, "log mode (dev, prod, quiet)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", envCfg.Workers, "worker goroutines (0 = CPU count)")

	rootCmd.AddCommand(
		fitCommand(),
		mixCommand(),
		runCommand(),
		liveCommand(),
		presetsCommand(),
		compareCommand(),
		benchCommand(),
		sweepCommand(),
		replicasCommand(),
		scenarioCommand(),
		listCommand(),
		deleteCommand(),
		reindexCommand(),
		plotCommand(),
		rdfCommand(),
		msdCommand(),
		vdosCommand(),
		scatterCommand(),
	)
	rootCmd.AddCommand(exportCommands()...)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	l, err := logging.New(logMode)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger = l
	dynamo.SetWorkers(workers)
	logger.Debug("setup", "data", dataDir, "workers", dynamo.Workers())
	return nil
}

// signalContext is canceled on interrupt so long runs stop cleanly.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func openStore() (*storage.Store, error) {
	st, err := storage.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dataDir, err)
	}
	return st, nil
}

// withRun opens the store, resolves an id prefix and hands both to fn.
func withRun(ctx context.Context, prefix string, fn func(st *storage.Store, runID string) error) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	runID, err := st.Resolve(ctx, prefix)
	if err != nil {
		return err
	}
	return fn(st, runID)
}
