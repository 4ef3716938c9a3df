// Copyright (c) 2023 Colin McRae

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/predrag3141/arithinv/approx"
	"github.com/predrag3141/arithinv/config"
	"github.com/predrag3141/arithinv/fieldiso"
	"github.com/predrag3141/arithinv/invariants"
)

func newCompareCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare FILE FILE",
		Short: "Report whether two manifolds have the same trace field, respecting embeddings",
		Args:  cobra.ExactArgs(2),
	}
	escalationFlags := addEscalationFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		fields := make([]*approx.FieldData, len(args))
		for i, file := range args {
			fieldData, err := traceField(cmd.Context(), opts, escalationFlags, file)
			if err != nil {
				return err
			}
			if fieldData == nil {
				return fmt.Errorf("%s: trace field not found", file)
			}
			fields[i] = fieldData
		}
		isomorphisms, err := fieldiso.Isomorphisms(fields[0].Field, fields[1].Field)
		if err != nil {
			return err
		}
		same, err := fieldiso.IsomorphicRespectingEmbeddings(fields[0].Field, fields[1].Field)
		if err != nil {
			return err
		}
		respecting, err := fieldiso.RespectingIsomorphisms(fields[0].Field, fields[1].Field)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printLines(out,
			fmt.Sprintf("%s: %s", args[0], fields[0].Field),
			fmt.Sprintf("%s: %s", args[1], fields[1].Field),
		)
		for _, iso := range isomorphisms {
			printLines(out, "Isomorphism: "+iso.String())
		}
		printLines(out, fmt.Sprintf("Isomorphic respecting embeddings: %t", same))
		for _, iso := range respecting {
			printLines(out, "Respecting isomorphism: "+iso.String())
		}
		return nil
	}
	return cmd
}

// traceField recognizes the trace field of the manifold in file
func traceField(
	ctx context.Context, opts *globalOptions, ef *escalationFlags, file string,
) (*approx.FieldData, error) {
	description, err := config.Load(file)
	if err != nil {
		return nil, err
	}
	group, err := description.Group()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	manifold, err := invariants.NewManifold(
		ctx, description.Name, group, invariants.WithLogger(opts.logger), invariants.WithMetrics(opts.metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	cfg := ef.apply(description.Escalation, opts.verbose)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	retVal, err := manifold.ComputeTraceField(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return retVal, nil
}
