package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/snapgrad/internal/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init FILE",
		Short: "Write the default replay configuration to FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Default().Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
}
