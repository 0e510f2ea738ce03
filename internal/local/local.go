// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package local runs sweep jobs as child processes of the dispatcher, for
// machines without a batch scheduler.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/petenewcomb/sweep-go"
	"github.com/petenewcomb/sweep-go/internal/cerr"
)

// ErrExit is matched by the error returned for a job whose process exited
// unsuccessfully. Use [errors.As] with [*ExitError] to recover the code.
const ErrExit = cerr.Error("job exited with non-zero status")

// ExitError reports the exit code of a failed job.
type ExitError struct {
	Job  string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: %s %d", e.Job, ErrExit, e.Code)
}

func (e *ExitError) Unwrap() error {
	return ErrExit
}

// Submitter implements [sweep.Submitter] by running each job's command and
// waiting for it to finish. Standard output and standard error go to the
// job's log and error files, which are truncated first.
//
// Target modules are ignored; the environment is expected to be prepared
// already.
type Submitter struct {
	// Env, if non-nil, replaces the inherited environment.
	Env []string

	// Dir is the working directory. Empty means the current directory.
	Dir string
}

var _ sweep.Submitter = (*Submitter)(nil)

func (s *Submitter) Submit(ctx context.Context, job sweep.Job) (_ sweep.Handle, err error) {
	stdout, err := create(job.LogPath())
	if err != nil {
		return sweep.Handle{}, err
	}
	defer closeLog(stdout, &err)
	stderr, err := create(job.ErrPath())
	if err != nil {
		return sweep.Handle{}, err
	}
	defer closeLog(stderr, &err)

	argv := job.Command()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Dir = s.Dir
	cmd.Env = s.Env
	if err := cmd.Start(); err != nil {
		return sweep.Handle{}, fmt.Errorf("starting %s: %w", job.Name(), err)
	}
	h := sweep.Handle{ID: "local:" + strconv.Itoa(cmd.Process.Pid)}

	err = cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return h, nil
	case ctx.Err() != nil:
		return h, fmt.Errorf("%s: %w", job.Name(), ctx.Err())
	case errors.As(err, &exitErr):
		return h, &ExitError{Job: job.Name(), Code: exitErr.ExitCode()}
	default:
		return h, fmt.Errorf("waiting for %s: %w", job.Name(), err)
	}
}

// closeLog closes f, joining any failure into *errp.
func closeLog(f interface {
	io.Closer
	Name() string
}, errp *error) {
	if closeErr := f.Close(); closeErr != nil {
		*errp = errors.Join(*errp, fmt.Errorf("closing %s: %w", f.Name(), closeErr))
	}
}

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}
	return f, nil
}
