package ingest

import "teatopics/internal/domain/config"

// OptionsFromConfig builds ingest options from the source and category
// sections of cfg.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	opt := Options{
		Path:              cfg.Source.Path,
		DefaultCollection: cfg.Source.DefaultCollection,
		RulesHash:         RulesHash(cfg.Source.InferCategories, cfg.Categories),
	}
	if cfg.Source.InferCategories {
		cat, err := NewCategorizer(cfg.Categories)
		if err != nil {
			return opt, err
		}
		opt.Categorizer = cat
	}
	return opt, nil
}
