// Package main provides the snapgrad CLI.
//
// Commands:
//
//	snapgrad replay       record, checkpoint, restore and replay a backward pass
//	snapgrad inspect FILE show the layout of a .bsnp snapshot
//	snapgrad init FILE    write the default replay configuration
//	snapgrad version      show version
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/born-ml/snapgrad/internal/serialization"
)

const version = "v" + serialization.Version

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "snapgrad",
		Short:        "Checkpoint and replay the saved state of a backward pass",
		SilenceUsage: true,
	}
	root.AddCommand(newReplayCmd(), newInspectCmd(), newInitCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "snapgrad %s\n", version)
		},
	}
}

// newLogger builds the text logger commands write to stderr.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
