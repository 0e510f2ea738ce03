// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sweep

import (
	"fmt"
	"iter"
	"slices"
	"strings"
)

// DefaultLogDir is the root of the log and error file tree used when a
// [SweepConfig] does not name one.
const DefaultLogDir = "jobs"

// SweepConfig describes a sweep before validation. See [NewSweep].
type SweepConfig struct {
	// Name identifies the sweep in logs and in the submission ledger.
	Name string

	// Category groups the sweep's log files, for instance "runtime" or
	// "cleaning". It must be usable as a single path element.
	Category string

	Target    Target
	Resources Resources
	LogDir    string

	// Base holds the parameters shared by every job. Fields varied by an
	// axis are overwritten per job.
	Base Params

	// Axes are expanded in order, the first varying slowest.
	Axes []Axis
}

// A Sweep is a validated, immutable [SweepConfig]. Its jobs are the Cartesian
// product of its axes applied to its base parameters.
type Sweep struct {
	cfg SweepConfig
}

// NewSweep validates cfg and returns a Sweep holding a private copy of it.
// Validation covers every job the sweep will generate, so a sweep that
// constructs successfully never yields a job the experiment scripts would
// reject on its flags alone. Errors match [ErrInvalidSweep].
func NewSweep(cfg SweepConfig) (*Sweep, error) {
	cfg.Target = cfg.Target.clone()
	cfg.Axes = slices.Clone(cfg.Axes)
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Category
	}
	s := &Sweep{cfg: cfg}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Sweep) validate() error {
	invalid := func(err error) error {
		return fmt.Errorf("%w %q: %w", ErrInvalidSweep, s.cfg.Name, err)
	}
	c := s.cfg.Category
	if c == "" || c == "." || c == ".." || strings.ContainsAny(c, `/\`) {
		return invalid(&ValueError{Field: "category", Value: c, Reason: "must be a single path element"})
	}
	if err := s.cfg.Target.validate(); err != nil {
		return invalid(err)
	}
	names := make(map[string]struct{}, len(s.cfg.Axes))
	for _, a := range s.cfg.Axes {
		if a == nil {
			return invalid(&ValueError{Field: "axis", Value: nil, Reason: "nil axis"})
		}
		if _, dup := names[a.Name()]; dup {
			return invalid(&ValueError{Field: "axis name", Value: a.Name(), Reason: "axis repeated"})
		}
		names[a.Name()] = struct{}{}
		if err := a.validate(); err != nil {
			return invalid(err)
		}
	}
	for job := range s.Jobs() {
		if err := job.params.Validate(); err != nil {
			return invalid(fmt.Errorf("job %d (%s): %w", job.index, job.Name(), err))
		}
	}
	return nil
}

func (s *Sweep) Name() string         { return s.cfg.Name }
func (s *Sweep) Category() string     { return s.cfg.Category }
func (s *Sweep) Base() Params         { return s.cfg.Base }
func (s *Sweep) Resources() Resources { return s.cfg.Resources }
func (s *Sweep) LogDir() string       { return s.cfg.LogDir }
func (s *Sweep) Target() Target       { return s.cfg.Target.clone() }
func (s *Sweep) Axes() []Axis         { return slices.Clone(s.cfg.Axes) }

// Len returns the number of jobs in the sweep: the product of its axis
// lengths.
func (s *Sweep) Len() int {
	n := 1
	for _, a := range s.cfg.Axes {
		n *= a.Len()
	}
	return n
}

// Jobs yields the sweep's jobs in nested-loop order over its axes. The
// sequence is deterministic and may be iterated more than once.
func (s *Sweep) Jobs() iter.Seq[Job] {
	return func(yield func(Job) bool) {
		axes := s.cfg.Axes
		sizes := make([]int, len(axes))
		for i, a := range axes {
			sizes[i] = a.Len()
		}
		index := 0
		for tuple := range Product(sizes...) {
			p := s.cfg.Base
			for i, a := range axes {
				a.apply(&p, tuple[i])
			}
			job := newJob(index, s.cfg.Category, s.cfg.LogDir, p, s.cfg.Target, s.cfg.Resources)
			if !yield(job) {
				return
			}
			index++
		}
	}
}

// WithAxes returns a new sweep whose axes named like any of the given axes
// are replaced by them, and whose remaining given axes are appended. The
// receiver is not modified.
func (s *Sweep) WithAxes(axes ...Axis) (*Sweep, error) {
	cfg := s.cfg
	cfg.Axes = slices.Clone(cfg.Axes)
	for _, a := range axes {
		if a == nil {
			// Left for NewSweep to reject.
			cfg.Axes = append(cfg.Axes, a)
			continue
		}
		i := slices.IndexFunc(cfg.Axes, func(b Axis) bool { return b != nil && b.Name() == a.Name() })
		if i < 0 {
			cfg.Axes = append(cfg.Axes, a)
		} else {
			cfg.Axes[i] = a
		}
	}
	return NewSweep(cfg)
}

// WithLogDir returns a copy of the sweep that writes logs under dir.
func (s *Sweep) WithLogDir(dir string) (*Sweep, error) {
	cfg := s.cfg
	cfg.LogDir = dir
	return NewSweep(cfg)
}
