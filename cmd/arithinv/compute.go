// Copyright (c) 2023 Colin McRae

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/predrag3141/arithinv/config"
	"github.com/predrag3141/arithinv/invariants"
	"github.com/predrag3141/arithinv/store"
)

func newComputeCmd(opts *globalOptions) *cobra.Command {
	var (
		jobs   int
		dbPath string
	)
	cmd := &cobra.Command{
		Use:   "compute FILE...",
		Short: "Compute the arithmetic invariants of the manifolds in YAML files",
		Args:  cobra.MinimumNArgs(1),
	}
	escalationFlags := addEscalationFlags(cmd)
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "number of manifolds computed at once")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database to resume from and save to")
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if jobs < 1 {
			return fmt.Errorf("--jobs %d < 1", jobs)
		}
		var db *store.Store
		if dbPath != "" {
			var err error
			if db, err = store.Open(cmd.Context(), dbPath); err != nil {
				return err
			}
			defer db.Close()
		}
		reports, err := computeAll(cmd.Context(), opts, escalationFlags, db, jobs, args)
		for _, report := range reports {
			if report != nil {
				printReport(cmd.OutOrStdout(), report)
			}
		}
		return err
	}
	return cmd
}

// computeAll computes the invariants of the manifolds in files, at most jobs
// at a time. Each manifold is handled by one goroutine, and a failing file
// does not stop the others. The reports are in the order of files; a report is
// nil if its file could not be computed. The returned error joins the errors
// of all failing files.
func computeAll(
	ctx context.Context, opts *globalOptions, ef *escalationFlags, db *store.Store, jobs int, files []string,
) ([]*invariants.Report, error) {
	reports := make([]*invariants.Report, len(files))
	errs := make([]error, len(files))
	var group errgroup.Group
	group.SetLimit(jobs)
	for i, file := range files {
		i, file := i, file
		group.Go(func() error {
			reports[i], errs[i] = compute(ctx, opts, ef, db, file)
			return nil
		})
	}
	_ = group.Wait()
	return reports, errors.Join(errs...)
}

// compute loads the manifold in file, resuming from db if it is not nil, and
// computes its invariants. Invariants that cannot be computed are logged and
// left out of the report.
func compute(
	ctx context.Context, opts *globalOptions, ef *escalationFlags, db *store.Store, file string,
) (*invariants.Report, error) {
	description, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	logger := opts.logger.With(zap.String("file", file))
	manifold, err := newManifold(ctx, opts, db, description)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	cfg := ef.apply(description.Escalation, opts.verbose)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	if err := manifold.ComputeArithmeticInvariants(ctx, cfg); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		logger.Warn("some invariants could not be computed", zap.Error(err))
	}
	if db != nil {
		if err := db.Save(ctx, manifold); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}
	logger.Info("computed invariants", zap.String("manifold", manifold.Name), zap.Stringer("id", manifold.ID))
	return manifold.Report(), nil
}

// newManifold builds the manifold of description, with the ID and attempt log
// stored in db under its name, if any
func newManifold(
	ctx context.Context, opts *globalOptions, db *store.Store, description *config.Manifold,
) (*invariants.Manifold, error) {
	group, err := description.Group()
	if err != nil {
		return nil, err
	}
	manifoldOpts := []invariants.Option{
		invariants.WithLogger(opts.logger), invariants.WithMetrics(opts.metrics),
	}
	if db != nil {
		summary, err := db.Get(ctx, description.Name)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			attempts, err := db.Attempts(ctx, summary.ID)
			if err != nil {
				return nil, err
			}
			manifoldOpts = append(manifoldOpts, invariants.WithID(summary.ID), invariants.WithAttemptRecords(attempts))
		}
	}
	return invariants.NewManifold(ctx, description.Name, group, manifoldOpts...)
}

// printReport styles the report only when w is a terminal
func printReport(w io.Writer, report *invariants.Report) {
	if f, ok := w.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		fmt.Fprintln(w, report.Render())
		return
	}
	fmt.Fprintln(w, report.String())
}

func printLines(w io.Writer, lines ...string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
