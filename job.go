// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package sweep

import (
	"path/filepath"
	"slices"
)

// Target is the executable each job of a sweep invokes, along with the
// environment modules that must be loaded before it runs (for instance an
// interpreter version on a cluster that uses environment modules).
type Target struct {
	// Command is the program and any leading arguments, for example
	// ["python3", "scripts/experiments/runtime.py"]. The job's flags are
	// appended to it.
	Command []string `yaml:"command"`

	Modules []string `yaml:"modules,omitempty"`
}

func (t Target) clone() Target {
	return Target{
		Command: slices.Clone(t.Command),
		Modules: slices.Clone(t.Modules),
	}
}

func (t Target) validate() error {
	if len(t.Command) == 0 || t.Command[0] == "" {
		return &ValueError{Field: "target command", Value: "", Reason: "required"}
	}
	return nil
}

// Resources are the hints passed to the batch scheduler with each submission.
// They are opaque to this package and are not validated; zero values are
// omitted from the request.
type Resources struct {
	MemoryGB    int    `yaml:"memory_gb,omitempty"`
	Time        string `yaml:"time,omitempty"`
	Partition   string `yaml:"partition,omitempty"`
	Nodes       int    `yaml:"nodes,omitempty"`
	Tasks       int    `yaml:"ntasks,omitempty"`
	CPUsPerTask int    `yaml:"cpus_per_task,omitempty"`
	Account     string `yaml:"account,omitempty"`
}

// A Job is one fully-resolved combination of experiment parameters bound to
// its target and log destinations. Jobs are created by [Sweep.Jobs] and are
// immutable; accessors return copies.
type Job struct {
	index     int
	category  string
	params    Params
	target    Target
	resources Resources
	logPath   string
	errPath   string
}

// Index is the job's position in its sweep, starting from zero.
func (j Job) Index() int { return j.index }

func (j Job) Category() string     { return j.category }
func (j Job) Params() Params       { return j.params }
func (j Job) Resources() Resources { return j.resources }
func (j Job) Target() Target       { return j.target.clone() }

// LogPath is where the job's standard output should be written.
func (j Job) LogPath() string { return j.logPath }

// ErrPath is where the job's standard error should be written.
func (j Job) ErrPath() string { return j.errPath }

// Args returns the job's command-line flags.
func (j Job) Args() []string {
	return j.params.Flags()
}

// Command returns the full command line: the target command followed by the
// job's flags.
func (j Job) Command() []string {
	return append(slices.Clone(j.target.Command), j.Args()...)
}

// Name is a short, deterministic identifier for the job, suitable as a
// scheduler job name.
func (j Job) Name() string {
	return j.category + "-" + string(j.params.Dataset) + "-" + j.params.Tag()
}

func (j Job) String() string {
	return j.Name()
}

func newJob(index int, category, logDir string, p Params, t Target, r Resources) Job {
	tag := p.Tag()
	dataset := string(p.Dataset)
	return Job{
		index:     index,
		category:  category,
		params:    p,
		target:    t.clone(),
		resources: r,
		logPath:   filepath.Join(logDir, "logs", category, dataset, tag+".out"),
		errPath:   filepath.Join(logDir, "errors", category, dataset, tag+".err"),
	}
}
