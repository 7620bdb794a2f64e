package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRegistryCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "registry",
		Short: "List the XML wrapper registry selected by the compatibility version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, log, err := buildSet(global, false)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "registry: %s\n", set.Registry.Name())
			for _, f := range set.Registry.Factories() {
				fmt.Fprintf(out, "  %s -> %s\n", f.DeclaredType(), f.WrappingType())
			}
			return nil
		},
	}
}
