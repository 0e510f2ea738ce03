// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/petenewcomb/sweep-go"
	"github.com/petenewcomb/sweep-go/internal/config"
	"github.com/petenewcomb/sweep-go/internal/ledger"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// app holds the state shared by the subcommands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// logger, if set before the command runs, is used instead of one built
	// from the flags.
	logger *zap.Logger

	verbose    bool
	trace      bool
	ledgerPath string

	cleanup []func(context.Context) error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "trexsweep",
		Short:         "Expand TREX experiment sweeps and dispatch their jobs",
		Args:          usageArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "log every submission in detail")
	pf.BoolVar(&a.trace, "trace", false, "write OpenTelemetry spans to standard error")
	pf.StringVar(&a.ledgerPath, "ledger", "", "SQLite `file` recording every submission")

	root.AddCommand(
		newPlanCmd(a),
		newSubmitCmd(a),
		newRunCmd(a),
		newPresetsCmd(a),
		newLedgerCmd(a),
	)
	return root
}

// usageArgs marks argument validation failures as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func (a *app) setup() error {
	if a.logger == nil {
		cfg := zap.NewProductionConfig()
		if a.verbose {
			cfg = zap.NewDevelopmentConfig()
		}
		logger, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		a.logger = logger
		a.cleanup = append(a.cleanup, func(context.Context) error {
			_ = logger.Sync()
			return nil
		})
	}
	zap.ReplaceGlobals(a.logger)

	if a.trace {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(a.stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return fmt.Errorf("creating span exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithBatcher(exporter),
		)
		otel.SetTracerProvider(tp)
		a.cleanup = append(a.cleanup, tp.Shutdown)
	}
	return nil
}

// teardown runs the cleanup functions registered by setup, latest first.
func (a *app) teardown(ctx context.Context) error {
	var errs []error
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		errs = append(errs, a.cleanup[i](ctx))
	}
	a.cleanup = nil
	return errors.Join(errs...)
}

// sweepSource is the set of flags that select and adjust a sweep.
type sweepSource struct {
	configPath string
	preset     string
	datasets   []string
	seeds      []int
	logDir     string
}

func (src *sweepSource) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&src.configPath, "config", "c", "", "sweep `file` to load")
	f.StringVarP(&src.preset, "preset", "p", "", "built-in sweep to load (see 'trexsweep presets')")
	f.StringSliceVar(&src.datasets, "datasets", nil, "replace the sweep's dataset axis")
	f.IntSliceVar(&src.seeds, "seeds", nil, "replace the sweep's random seed axis")
	f.StringVar(&src.logDir, "log-dir", "", "root `directory` for job logs")
}

func (src *sweepSource) load(cmd *cobra.Command) (*sweep.Sweep, error) {
	// Checked here rather than with cobra's flag groups, whose errors bypass
	// the flag error function.
	hasConfig, hasPreset := cmd.Flags().Changed("config"), cmd.Flags().Changed("preset")
	switch {
	case hasConfig && hasPreset:
		return nil, usagef("--config and --preset are mutually exclusive")
	case !hasConfig && !hasPreset:
		return nil, usagef("one of --config or --preset is required")
	}

	var s *sweep.Sweep
	var err error
	if hasConfig {
		s, err = config.LoadFile(src.configPath)
	} else {
		s, err = config.Preset(src.preset)
	}
	if err != nil {
		return nil, err
	}

	var overrides []sweep.Axis
	if cmd.Flags().Changed("datasets") {
		a, err := sweep.ParseAxis(sweep.AxisDataset, src.datasets)
		if err != nil {
			return nil, usagef("--datasets: %w", err)
		}
		overrides = append(overrides, a)
	}
	if cmd.Flags().Changed("seeds") {
		overrides = append(overrides, sweep.Seeds(src.seeds...))
	}
	if len(overrides) > 0 {
		if s, err = s.WithAxes(overrides...); err != nil {
			return nil, err
		}
	}
	if src.logDir != "" {
		if s, err = s.WithLogDir(src.logDir); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// dispatch submits every job of s through sub, printing one line per job to
// standard output and, with --ledger, recording each outcome.
func (a *app) dispatch(ctx context.Context, s *sweep.Sweep, sub sweep.Submitter, concurrency int, sweepID string) error {
	ctx, span := otel.Tracer("trexsweep").Start(ctx, "sweep "+s.Name())
	defer span.End()

	if sweepID == "" {
		sweepID = s.Name() + "-" + time.Now().UTC().Format("20060102T150405Z")
	}
	logger := a.logger.With(zap.String("sweep", sweepID))

	var rec *ledger.Recorder
	if a.ledgerPath != "" {
		l, err := ledger.Open(ctx, a.ledgerPath)
		if err != nil {
			return err
		}
		defer l.Close()
		rec = l.Recorder(sweepID, 32)
	}

	d := &sweep.Dispatcher{
		Submitter:   sub,
		Concurrency: concurrency,
		Logger:      logger,
		OnResult: func(r sweep.Result) {
			if r.OK() {
				fmt.Fprintf(a.stdout, "%s\t%s\n", r.Handle, r.Job.Name())
			} else {
				fmt.Fprintf(a.stdout, "FAILED\t%s\t%v\n", r.Job.Name(), r.Err)
			}
			if rec != nil {
				rec.Record(r)
			}
		},
	}
	logger.Info("dispatching sweep", zap.Int("jobs", s.Len()), zap.Int("concurrency", concurrency))
	report, err := d.DispatchSweep(ctx, s)
	if rec != nil {
		// Record what was dispatched even if the sweep was interrupted.
		if rerr := rec.Close(context.WithoutCancel(ctx)); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}
	fmt.Fprintf(a.stdout, "%d of %d jobs dispatched, %d failed\n",
		report.Submitted(), len(report.Results), report.Failed())
	return err
}
