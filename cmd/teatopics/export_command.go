package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"teatopics/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var output string
	var collection string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the library as an interchange JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, closeLib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer closeLib()

			if _, err := lib.Reload(cmd.Context()); err != nil {
				return err
			}
			topics := lib.Snapshot().Topics
			if collection != "" {
				if topics, err = lib.Collection(collection); err != nil {
					return err
				}
			}
			now := time.Now()
			if output == "" {
				return export.Write(cmd.OutOrStdout(), topics, now)
			}
			if output == "." {
				output = export.Filename(now)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := export.Write(f, topics, now); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `Output file ("." for topics-YYYY-MM-DD.json, default stdout)`)
	cmd.Flags().StringVar(&collection, "collection", "", "Only export this collection")
	return cmd
}
