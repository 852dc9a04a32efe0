package main

import (
	"fmt"

	"github.com/milk9111/npcsense/levels"
	"github.com/milk9111/npcsense/prefabs"
	"github.com/spf13/cobra"
)

func newFactionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "factions [file]",
		Short: "Print a faction relation table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "factions.yaml"
			if len(args) == 1 {
				name = args[0]
			}
			spec, err := prefabs.LoadFactionSpec(name)
			if err != nil {
				return err
			}
			for _, e := range spec.NewTable().Entries() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %-12s %s\n", e.A, e.B, e.Relation)
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in archetypes and levels",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "archetypes:")
			for _, name := range prefabs.List() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			fmt.Fprintln(out, "levels:")
			for _, name := range levels.List() {
				fmt.Fprintf(out, "  %s\n", name)
			}
		},
	}
}
