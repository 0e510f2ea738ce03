// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package slurm submits sweep jobs to a Slurm cluster through sbatch.
package slurm

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"
	"github.com/petenewcomb/sweep-go"
	"github.com/petenewcomb/sweep-go/internal/cerr"
)

// ErrRejected is matched by every error returned when sbatch refuses a job or
// answers with something other than a job ID.
const ErrRejected = cerr.Error("sbatch rejected job")

const (
	DefaultCommand = "sbatch"
	DefaultShell   = "/bin/bash"
)

// Submitter implements [sweep.Submitter] by piping a generated batch script
// to sbatch. The zero value runs the real sbatch found on PATH.
type Submitter struct {
	// Command is the sbatch executable. Defaults to [DefaultCommand].
	Command string

	// Shell is the interpreter named on the batch script's shebang line.
	// Defaults to [DefaultShell].
	Shell string

	// Runner executes Command. Defaults to [ExecRunner].
	Runner Runner
}

var _ sweep.Submitter = (*Submitter)(nil)

// Submit creates the job's log directories and submits it. The returned
// handle holds the Slurm job ID.
func (s *Submitter) Submit(ctx context.Context, job sweep.Job) (sweep.Handle, error) {
	for _, path := range []string{job.LogPath(), job.ErrPath()} {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return sweep.Handle{}, fmt.Errorf("creating log directory for %s: %w", job.Name(), err)
		}
	}

	runner := s.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	stdout, stderr, err := runner.Run(ctx, []byte(s.Script(job)), s.command(), s.Request(job)...)
	if err != nil {
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return sweep.Handle{}, fmt.Errorf("%w %s: %s: %w", ErrRejected, job.Name(), msg, err)
		}
		return sweep.Handle{}, fmt.Errorf("%w %s: %w", ErrRejected, job.Name(), err)
	}
	id, err := ParseJobID(string(stdout))
	if err != nil {
		return sweep.Handle{}, fmt.Errorf("%w %s: %w", ErrRejected, job.Name(), err)
	}
	return sweep.Handle{ID: id}, nil
}

func (s *Submitter) command() string {
	if s.Command == "" {
		return DefaultCommand
	}
	return s.Command
}

func (s *Submitter) shell() string {
	if s.Shell == "" {
		return DefaultShell
	}
	return s.Shell
}

// Request returns the sbatch arguments for job. Resource hints left at their
// zero value are omitted so that the cluster defaults apply.
func (s *Submitter) Request(job sweep.Job) []string {
	r := job.Resources()
	args := []string{
		"--parsable",
		"--job-name=" + job.Name(),
		"--output=" + job.LogPath(),
		"--error=" + job.ErrPath(),
	}
	if r.MemoryGB > 0 {
		args = append(args, "--mem="+strconv.Itoa(r.MemoryGB)+"G")
	}
	if r.Time != "" {
		args = append(args, "--time="+r.Time)
	}
	if r.Partition != "" {
		args = append(args, "--partition="+r.Partition)
	}
	if r.Nodes > 0 {
		args = append(args, "--nodes="+strconv.Itoa(r.Nodes))
	}
	if r.Tasks > 0 {
		args = append(args, "--ntasks="+strconv.Itoa(r.Tasks))
	}
	if r.CPUsPerTask > 0 {
		args = append(args, "--cpus-per-task="+strconv.Itoa(r.CPUsPerTask))
	}
	if r.Account != "" {
		args = append(args, "--account="+r.Account)
	}
	return args
}

// Script returns the batch script sbatch reads from standard input: the
// shebang, one module load per target module, then the job's command.
func (s *Submitter) Script(job sweep.Job) string {
	var b strings.Builder
	b.WriteString("#!")
	b.WriteString(s.shell())
	b.WriteByte('\n')
	for _, m := range job.Target().Modules {
		b.WriteString("module load ")
		b.WriteString(shellescape.Quote(m))
		b.WriteByte('\n')
	}
	b.WriteString(shellescape.QuoteCommand(job.Command()))
	b.WriteByte('\n')
	return b.String()
}

// ParseJobID extracts the job ID from sbatch's standard output, which is
// either "<id>" or "<id>;<cluster>" with --parsable, or "Submitted batch job
// <id>" without it.
func ParseJobID(out string) (string, error) {
	line := strings.TrimSpace(out)
	if i := strings.LastIndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSpace(line[i+1:])
	}
	if rest, ok := strings.CutPrefix(line, "Submitted batch job "); ok {
		line = strings.TrimSpace(rest)
	}
	id, _, _ := strings.Cut(line, ";")
	if id == "" {
		return "", fmt.Errorf("no job ID in sbatch output %q", out)
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return "", fmt.Errorf("malformed job ID in sbatch output %q", out)
	}
	return id, nil
}
