// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"embed"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/petenewcomb/sweep-go"
	"github.com/petenewcomb/sweep-go/internal/cerr"
)

//go:embed presets/*.yaml
var presetFS embed.FS

// ErrUnknownPreset is matched by the error returned for a name that is not
// among [PresetNames].
const ErrUnknownPreset = cerr.Error("unknown preset")

// PresetNames lists the built-in presets in lexical order.
func PresetNames() []string {
	entries, err := presetFS.ReadDir("presets")
	if err != nil {
		panic(err)
	}
	var names []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".yaml"); ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// PresetFile returns the parsed preset named name.
func PresetFile(name string) (*File, error) {
	data, err := PresetSource(name)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", name, err)
	}
	return f, nil
}

// PresetSource returns the YAML text of the preset named name.
func PresetSource(name string) ([]byte, error) {
	if !slices.Contains(PresetNames(), name) {
		return nil, fmt.Errorf("%w %q", ErrUnknownPreset, name)
	}
	return presetFS.ReadFile(path.Join("presets", name+".yaml"))
}

// Preset builds the sweep of the preset named name.
func Preset(name string) (*sweep.Sweep, error) {
	f, err := PresetFile(name)
	if err != nil {
		return nil, err
	}
	s, err := f.Sweep()
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", name, err)
	}
	return s, nil
}
