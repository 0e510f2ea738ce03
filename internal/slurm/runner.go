// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package slurm

import (
	"bytes"
	"context"
	"os/exec"
)

// A Runner runs an external command to completion, feeding it stdin and
// returning what it wrote to its standard streams.
type Runner interface {
	Run(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)
}

// RunnerFunc adapts an ordinary function to the [Runner] interface.
type RunnerFunc func(ctx context.Context, stdin []byte, name string, args ...string) (stdout, stderr []byte, err error)

func (f RunnerFunc) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	return f(ctx, stdin, name, args...)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = bytes.NewReader(stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
