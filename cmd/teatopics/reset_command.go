package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget imported and OCR-added topics and reload the source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, closeLib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer closeLib()

			if err := lib.Reset(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "library reset, %d topics\n", len(lib.Snapshot().Topics))
			return nil
		},
	}
}
