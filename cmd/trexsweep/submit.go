// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"github.com/petenewcomb/sweep-go/internal/local"
	"github.com/petenewcomb/sweep-go/internal/slurm"
	"github.com/petenewcomb/sweep-go/otsweep"
	"github.com/spf13/cobra"
)

func newSubmitCmd(a *app) *cobra.Command {
	var src sweepSource
	var sub slurm.Submitter
	var concurrency int
	var sweepID string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit every job of a sweep to Slurm with sbatch",
		Long: `Submit every job of a sweep to Slurm with sbatch.

Each job is submitted once, in sweep order. A rejected submission is
reported and does not stop the remaining jobs. Job logs are written by
Slurm to the paths shown by 'trexsweep plan --scripts'.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if concurrency < 1 {
				return usagef("--concurrency must be at least 1")
			}
			s, err := src.load(cmd)
			if err != nil {
				return err
			}
			return a.dispatch(cmd.Context(), s, otsweep.Instrumented("sbatch", &sub, a.logger), concurrency, sweepID)
		},
	}
	src.register(cmd)
	f := cmd.Flags()
	f.StringVar(&sub.Command, "sbatch", slurm.DefaultCommand, "sbatch `executable`")
	f.StringVar(&sub.Shell, "shell", slurm.DefaultShell, "interpreter for the generated batch scripts")
	f.IntVar(&concurrency, "concurrency", 1, "number of sbatch calls in flight at once")
	f.StringVar(&sweepID, "sweep-id", "", "ledger identifier for this submission (default <name>-<UTC time>)")
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var src sweepSource
	var sub local.Submitter
	var parallel int
	var sweepID string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every job of a sweep on this machine",
		Long: `Run every job of a sweep on this machine, without a batch scheduler.

Standard output and standard error of each job go to its log and error
files. A job that fails is reported and does not stop the others. Target
modules are not loaded.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if parallel < 1 {
				return usagef("--parallel must be at least 1")
			}
			s, err := src.load(cmd)
			if err != nil {
				return err
			}
			return a.dispatch(cmd.Context(), s, otsweep.Instrumented("local", &sub, a.logger), parallel, sweepID)
		},
	}
	src.register(cmd)
	f := cmd.Flags()
	f.IntVarP(&parallel, "parallel", "j", 1, "number of jobs to run at once")
	f.StringVar(&sub.Dir, "dir", "", "working `directory` for the jobs")
	f.StringVar(&sweepID, "sweep-id", "", "ledger identifier for this run (default <name>-<UTC time>)")
	return cmd
}
