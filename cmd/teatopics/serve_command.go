package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"teatopics/internal/ocr"
	"teatopics/internal/serve"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string
	var dev bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the topic grid, presenter and OCR pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			lib, closeLib, err := ctx.openLibrary()
			if err != nil {
				return err
			}
			defer closeLib()

			tr, closeTr := ctx.translator(runCtx)
			defer closeTr()

			deps := serve.Deps{
				Library:    lib,
				Translator: tr,
				Logger:     ctx.log(),
				Dev:        dev,
			}
			engine := ocr.NewTesseract(cfg.OCR.Binary, cfg.OCR.PageSegMode)
			if err := engine.Available(); err != nil {
				ctx.log().Warn("ocr disabled", "reason", err.Error())
			} else {
				deps.OCR = engine
			}

			s, err := serve.New(*cfg, deps)
			if err != nil {
				return err
			}
			defer s.Close()
			return s.ListenAndServe(runCtx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Reload open pages when the topic source changes")
	return cmd
}
