// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/petenewcomb/sweep-go/internal/config"
	"github.com/spf13/cobra"
)

func newPresetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List the built-in sweeps",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(*cobra.Command, []string) error {
			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tJOBS\tDESCRIPTION")
			for _, name := range config.PresetNames() {
				f, err := config.PresetFile(name)
				if err != nil {
					return err
				}
				s, err := f.Sweep()
				if err != nil {
					return fmt.Errorf("preset %s: %w", name, err)
				}
				fmt.Fprintf(w, "%s\t%d\t%s\n", name, s.Len(), f.Description)
			}
			return w.Flush()
		},
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show NAME",
		Short: "Print the YAML of a built-in sweep",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := config.PresetSource(args[0])
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(data)
			return err
		},
	})
	return cmd
}
