// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package config reads sweep descriptions from YAML and provides the built-in
// presets that reproduce the published experiment runs.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/petenewcomb/sweep-go"
	"github.com/petenewcomb/sweep-go/internal/cerr"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is matched by every error caused by the content of a sweep
// file, as opposed to failure to read it.
const ErrInvalidConfig = cerr.Error("invalid sweep file")

// File is the YAML form of a sweep.
//
//	name: runtime-trex
//	category: runtime
//	target:
//	  command: [python3, scripts/experiments/runtime.py]
//	  modules: [python3/3.7.5]
//	resources: {memory_gb: 30, time: "1440", partition: short}
//	params: {tree_type: cb, n_estimators: 100, max_depth: 3, method: trex}
//	axes:
//	  - {name: dataset, values: [churn, amazon]}
//	  - {name: rs, values: [1, 2, 3, 4, 5]}
type File struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description,omitempty"`
	Category    string          `yaml:"category"`
	Target      sweep.Target    `yaml:"target"`
	LogDir      string          `yaml:"log_dir,omitempty"`
	Resources   sweep.Resources `yaml:"resources,omitempty"`
	Params      sweep.Params    `yaml:"params"`
	Axes        []AxisSpec      `yaml:"axes"`
}

// AxisSpec is one axis of a sweep file. Values are given in their
// command-line form.
type AxisSpec struct {
	Name   string  `yaml:"name"`
	Values Scalars `yaml:"values"`
}

// Scalars is a YAML sequence of scalars kept as their literal text, so that
// "0.10" and 0.1 are both read as written.
type Scalars []string

func (s *Scalars) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: axis values must be a sequence", node.Line)
	}
	out := make(Scalars, 0, len(node.Content))
	for _, n := range node.Content {
		if n.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: axis value must be a scalar", n.Line)
		}
		out = append(out, n.Value)
	}
	*s = out
	return nil
}

// Parse decodes a single YAML document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidConfig)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &f, nil
}

// Sweep validates the file and builds the sweep it describes. Axes without
// values are rejected here even though a [sweep.Sweep] accepts them, since
// in a file they are almost always a mistake.
func (f *File) Sweep() (*sweep.Sweep, error) {
	cfg := sweep.SweepConfig{
		Name:      f.Name,
		Category:  f.Category,
		Target:    f.Target,
		Resources: f.Resources,
		LogDir:    f.LogDir,
		Base:      f.Params,
	}
	for _, a := range f.Axes {
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("%w: axis %q has no values", ErrInvalidConfig, a.Name)
		}
		axis, err := sweep.ParseAxis(a.Name, a.Values)
		if err != nil {
			return nil, fmt.Errorf("%w: axis %q: %w", ErrInvalidConfig, a.Name, err)
		}
		cfg.Axes = append(cfg.Axes, axis)
	}
	s, err := sweep.NewSweep(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return s, nil
}

// Load parses data and builds its sweep.
func Load(data []byte) (*sweep.Sweep, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return f.Sweep()
}

// LoadFile reads and loads the sweep file at path.
func LoadFile(path string) (*sweep.Sweep, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
