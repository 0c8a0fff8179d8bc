package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/born-ml/snapgrad/internal/blob"
	"github.com/born-ml/snapgrad/internal/serialization"
)

func newInspectCmd() *cobra.Command {
	var skipChecksum bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show the queues and blobs stored in a .bsnp snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := serialization.OpenWithOptions(args[0], serialization.ReaderOptions{
				SkipChecksumValidation: skipChecksum,
			})
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			h := r.Header()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "format:   v%d (snapgrad %s)\n", h.FormatVersion, h.SnapgradVersion)
			fmt.Fprintf(w, "stack:    %s\n", h.StackID)
			fmt.Fprintf(w, "created:  %s\n", h.CreatedAt.Format("2006-01-02 15:04:05 MST"))
			fmt.Fprintf(w, "checksum: %x\n", r.Checksum())
			fmt.Fprintf(w, "data:     %d bytes in %d blobs\n", r.DataSize(), h.BlobCount())
			for qi, q := range h.Queues {
				fmt.Fprintf(w, "queue %d:\n", qi)
				for bi, b := range q.Blobs {
					fmt.Fprintf(w, "  blob %d: offset=%d size=%d payload=%d\n",
						bi, b.Offset, b.Size, b.Size-blob.HeaderSize)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipChecksum, "skip-checksum", false, "do not verify the data section checksum")
	return cmd
}
