package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"teatopics/internal/build"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var publicDir string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Write a static snapshot of the grid, cards and topics.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			c := *cfg
			if publicDir != "" {
				c.Build.PublicDir = publicDir
			}

			lib, closeLib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer closeLib()

			b := &build.Builder{Cfg: c, Library: lib, Logger: ctx.log()}
			res, err := b.Run(cmd.Context())
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", w.Path, w.Msg)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "built %d topics, %d pages, %d cards into %s\n", res.Topics, res.Pages, res.Cards, c.Build.PublicDir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&publicDir, "out", "o", "", "Output directory (overrides build.public_dir)")
	return cmd
}
