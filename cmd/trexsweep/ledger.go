// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/petenewcomb/sweep-go/internal/ledger"
	"github.com/spf13/cobra"
)

func newLedgerCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect the submission ledger",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list [SWEEP_ID]",
		Short: "List recorded sweeps, or the jobs of one sweep",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.ledgerPath == "" {
				return usagef("--ledger is required")
			}
			l, err := ledger.Open(cmd.Context(), a.ledgerPath)
			if err != nil {
				return err
			}
			defer l.Close()

			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			if len(args) == 0 {
				sums, err := l.Sweeps(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "SWEEP\tJOBS\tFAILED\tSTARTED")
				for _, s := range sums {
					fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", s.SweepID, s.Jobs, s.Failed, s.FirstSeen.Format(time.RFC3339))
				}
				return w.Flush()
			}

			entries, err := l.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return usagef("no sweep %q in %s", args[0], a.ledgerPath)
			}
			fmt.Fprintln(w, "INDEX\tJOB\tHANDLE\tERROR")
			for _, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.Index, e.JobName, e.Handle, e.Error)
			}
			return w.Flush()
		},
	})
	return cmd
}
