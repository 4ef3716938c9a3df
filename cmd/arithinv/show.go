// Copyright (c) 2023 Colin McRae

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/predrag3141/arithinv/store"
)

func newShowCmd(_ *globalOptions) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "show [NAME]",
		Short: "Print a stored report, or list the stored manifolds",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				summary, err := db.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprint(out, summary.Report)
				return nil
			}
			summaries, err := db.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, summary := range summaries {
				arithmetic := "unknown"
				if summary.Arithmetic != nil {
					arithmetic = fmt.Sprint(*summary.Arithmetic)
				}
				printLines(out, fmt.Sprintf("%s\t%s\tarithmetic: %s", summary.Name, summary.ID, arithmetic))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
