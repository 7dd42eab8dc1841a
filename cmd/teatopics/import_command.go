package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"teatopics/internal/ingest"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Add the topics of an exported document to the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			topics, err := ingest.DecodeImport(raw)
			if err != nil {
				return err
			}

			lib, closeLib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer closeLib()

			// A broken source must not block adding topics.
			if _, err := lib.Reload(cmd.Context()); err != nil {
				ctx.log().Warn("topic source not loaded", "error", err.Error())
			}
			if replace {
				kept, err := lib.Replace(topics)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "replaced library with %d topics\n", len(kept))
				return nil
			}
			added, err := lib.Add(topics)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %d, skipped %d\n", len(added), len(topics)-len(added))
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "Replace the whole library instead of merging")
	return cmd
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
