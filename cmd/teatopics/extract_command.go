package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"teatopics/internal/extract"
)

func newExtractCommand() *cobra.Command {
	var asJSON bool
	var collection string

	cmd := &cobra.Command{
		Use:   "extract <file|->",
		Short: "Print the questions found in OCR text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(map[string]any{"topics": extract.Topics(string(raw), collection)})
			}
			for _, q := range extract.Questions(string(raw)) {
				fmt.Fprintln(out, q)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit an importable topics document")
	cmd.Flags().StringVar(&collection, "collection", extract.DefaultCollection, "Collection for --json output")
	return cmd
}
