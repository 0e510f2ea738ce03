// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Command trexsweep expands TREX experiment sweeps into jobs and dispatches
// them to Slurm or runs them locally.
//
// Exit status is 0 when every job was dispatched, even if some were
// rejected; 2 for an invalid invocation or sweep file; 1 otherwise.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/petenewcomb/sweep-go"
	"github.com/petenewcomb/sweep-go/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], &app{stdout: os.Stdout, stderr: os.Stderr})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, a *app) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if terr := a.teardown(context.WithoutCancel(ctx)); err == nil {
		err = terr
	}
	if err == nil {
		return 0
	}
	fmt.Fprintln(a.stderr, "trexsweep:", err)
	return exitCode(err)
}

// usageError marks an error caused by how the command was invoked.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return usageError{fmt.Errorf(format, args...)}
}

func exitCode(err error) int {
	var ue usageError
	switch {
	case errors.As(err, &ue),
		errors.Is(err, fs.ErrNotExist),
		errors.Is(err, config.ErrInvalidConfig),
		errors.Is(err, config.ErrUnknownPreset),
		errors.Is(err, sweep.ErrInvalidSweep),
		errors.Is(err, sweep.ErrInvalidValue):
		return 2
	default:
		return 1
	}
}
