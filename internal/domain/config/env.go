package config

import (
	"errors"
	"github.com/subosito/gotenv"
	"os"
)

// LoadEnv reads .env style files into the process environment. Missing
// files are ignored; variables already set win over file values.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := gotenv.Load(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}
