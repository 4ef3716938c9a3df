// Copyright (c) 2023 Colin McRae

package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/predrag3141/arithinv/escalation"
)

// globalOptions are the flags shared by every command
type globalOptions struct {
	verbose     bool
	metricsFile string
	logger      *zap.Logger
	registry    *prometheus.Registry
	metrics     *escalation.Metrics
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:          "arithinv",
		Short:        "Arithmetic invariants of hyperbolic 3-manifolds",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setUp()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.tearDown()
		},
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every attempt")
	root.PersistentFlags().StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	root.AddCommand(newComputeCmd(opts), newCompareCmd(opts), newShowCmd(opts))
	return root
}

func (opts *globalOptions) setUp() error {
	logConfig := zap.NewProductionConfig()
	if opts.verbose {
		logConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logConfig.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	opts.logger = logger
	opts.registry = prometheus.NewRegistry()
	if opts.metrics, err = escalation.NewMetrics(opts.registry); err != nil {
		return err
	}
	return nil
}

func (opts *globalOptions) tearDown() error {
	// Sync fails on some terminals; it is not worth failing the command over
	_ = opts.logger.Sync()
	if opts.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(opts.metricsFile, opts.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

// escalationFlags are the flags that override escalation settings
type escalationFlags struct {
	cfg   escalation.Config
	flags *pflag.FlagSet
}

func addEscalationFlags(cmd *cobra.Command) *escalationFlags {
	retVal := &escalationFlags{cfg: escalation.DefaultConfig(), flags: cmd.Flags()}
	f := cmd.Flags()
	f.UintVar(&retVal.cfg.StartingPrecision, "starting-precision", retVal.cfg.StartingPrecision, "precision of the first attempt, in bits")
	f.IntVar(&retVal.cfg.StartingDegree, "starting-degree", retVal.cfg.StartingDegree, "degree bound of the first attempt")
	f.UintVar(&retVal.cfg.PrecisionIncrement, "precision-increment", retVal.cfg.PrecisionIncrement, "precision added after a failure")
	f.IntVar(&retVal.cfg.DegreeIncrement, "degree-increment", retVal.cfg.DegreeIncrement, "degree bound added after a failure")
	f.UintVar(&retVal.cfg.MaxPrecision, "max-precision", retVal.cfg.MaxPrecision, "largest precision tried")
	f.IntVar(&retVal.cfg.MaxDegree, "max-degree", retVal.cfg.MaxDegree, "largest degree bound tried")
	f.BoolVar(&retVal.cfg.UseLastKnownFailed, "skip-failed", false, "skip attempts recorded as failures")
	f.BoolVar(&retVal.cfg.ForceRecompute, "force", false, "recompute invariants that are already known")
	return retVal
}

// apply returns base with the settings given on the command line
func (ef *escalationFlags) apply(base escalation.Config, verbose bool) escalation.Config {
	retVal := base
	ef.flags.Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "starting-precision":
			retVal.StartingPrecision = ef.cfg.StartingPrecision
		case "starting-degree":
			retVal.StartingDegree = ef.cfg.StartingDegree
		case "precision-increment":
			retVal.PrecisionIncrement = ef.cfg.PrecisionIncrement
		case "degree-increment":
			retVal.DegreeIncrement = ef.cfg.DegreeIncrement
		case "max-precision":
			retVal.MaxPrecision = ef.cfg.MaxPrecision
		case "max-degree":
			retVal.MaxDegree = ef.cfg.MaxDegree
		case "skip-failed":
			retVal.UseLastKnownFailed = ef.cfg.UseLastKnownFailed
		case "force":
			retVal.ForceRecompute = ef.cfg.ForceRecompute
		}
	})
	retVal.Verbose = retVal.Verbose || verbose
	return retVal
}
