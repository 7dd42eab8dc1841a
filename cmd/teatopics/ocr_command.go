package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"teatopics/internal/extract"
	"teatopics/internal/ocr"
)

func newOCRCommand(ctx *commandContext) *cobra.Command {
	var questionsOnly bool
	var add bool
	var collection string

	cmd := &cobra.Command{
		Use:   "ocr <image>...",
		Short: "Recognize text in photographed posters or cards",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			engine := ocr.NewTesseract(cfg.OCR.Binary, cfg.OCR.PageSegMode)
			if err := engine.Available(); err != nil {
				return err
			}

			inputs := make([]ocr.Input, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				inputs = append(inputs, ocr.Input{Name: filepath.Base(path), Data: data})
			}

			p := ocr.NewPipeline(cfg.OCR, engine, ctx.log())
			p.Progress = func(pr ocr.Progress) {
				if pr.Stage == ocr.StageDone {
					fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", pr.Index, pr.Total, pr.Name)
				}
			}
			text, err := p.Run(cmd.Context(), inputs)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case add:
				if collection == "" {
					collection = cfg.OCR.DefaultCollection
				}
				lib, closeLib, err := ctx.openLibrary()
				if err != nil {
					return err
				}
				defer closeLib()
				if _, err := lib.Reload(cmd.Context()); err != nil {
					ctx.log().Warn("topic source not loaded", "error", err.Error())
				}
				added, err := lib.Add(extract.Topics(text, collection))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "added %d topics to %q\n", len(added), collection)
			case questionsOnly:
				for _, q := range extract.Questions(text) {
					fmt.Fprintln(out, q)
				}
			default:
				fmt.Fprintln(out, text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&questionsOnly, "questions", false, "Print only the extracted questions")
	cmd.Flags().BoolVar(&add, "add", false, "Add the extracted questions to the library")
	cmd.Flags().StringVar(&collection, "collection", "", "Collection for --add (default ocr.default_collection)")
	return cmd
}
