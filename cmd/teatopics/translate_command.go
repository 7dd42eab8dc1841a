package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "translate <text>...",
		Short: "Translate topic texts through the configured endpoints",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tr, closeTr := ctx.translator(cmd.Context())
			defer closeTr()
			if tr == nil {
				return errors.New("translation is disabled (set translate.enabled or TEATOPICS_TRANSLATE_ENDPOINTS)")
			}
			if target == "" {
				target = cfg.Translate.Target
			}
			for _, line := range tr.Translate(cmd.Context(), args, target) {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "target", "t", "", "Target language (default translate.target)")
	return cmd
}
