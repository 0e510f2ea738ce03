// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"fmt"

	"github.com/alessio/shellescape"
	"github.com/petenewcomb/sweep-go/internal/slurm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newPlanCmd(a *app) *cobra.Command {
	var src sweepSource
	var scripts bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the command line of every job without running anything",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := src.load(cmd)
			if err != nil {
				return err
			}
			sub := &slurm.Submitter{}
			for job := range s.Jobs() {
				if !scripts {
					fmt.Fprintln(a.stdout, shellescape.QuoteCommand(job.Command()))
					continue
				}
				fmt.Fprintf(a.stdout, "# %s %s\n%s\n",
					slurm.DefaultCommand, shellescape.QuoteCommand(sub.Request(job)), sub.Script(job))
			}
			a.logger.Info("sweep planned", zap.String("sweep", s.Name()), zap.Int("jobs", s.Len()))
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&scripts, "scripts", false, "print the sbatch request and batch script of each job instead")
	return cmd
}
