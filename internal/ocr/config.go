package ocr

import (
	"log/slog"
	"teatopics/internal/domain/config"
	"teatopics/internal/imaging"
)

func OptionsFromConfig(cfg config.OCRConfig) imaging.Options {
	return imaging.Options{
		Crop:      cfg.Crop,
		Scale:     cfg.Scale,
		Contrast:  cfg.Contrast,
		Threshold: cfg.Threshold,
		Sharpen:   cfg.Sharpen,
	}
}

// NewPipeline returns a pipeline for one batch. Pipelines are not reused
// across batches.
func NewPipeline(cfg config.OCRConfig, engine Engine, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		Engine:  engine,
		Lang:    cfg.Language,
		Options: OptionsFromConfig(cfg),
		Workers: cfg.Workers,
		Logger:  logger,
	}
}
