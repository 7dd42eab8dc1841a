package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerr "teatopics/internal/domain/errors"
)

var envKeys = []string{
	"TEATOPICS_ADDR",
	"TEATOPICS_SOURCE",
	"TEATOPICS_LIBRARY",
	"TEATOPICS_LOG_LEVEL",
	"TEATOPICS_TRANSLATE_ENDPOINTS",
	"TEATOPICS_TRANSLATE_API_KEY",
	"TEATOPICS_TRANSLATE_TIMEOUT",
	"VALKEY_INIT_ADDRESS",
	"VALKEY_PASSWORD",
	"VALKEY_TLS",
}

// clearEnv blanks every override so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "teatopics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestValidateReportsEveryField(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"empty title", func(c *Config) { c.Site.Title = " " }, "site.title"},
		{"page size", func(c *Config) { c.Site.PageSize = 0 }, "site.page_size"},
		{"source", func(c *Config) { c.Source.Path = "" }, "source.path"},
		{"lock timeout", func(c *Config) { c.Library.LockTimeoutSeconds = -1 }, "library.lock_timeout_seconds"},
		{"crop", func(c *Config) { c.OCR.Crop = 0.5 }, "ocr.crop"},
		{"threshold", func(c *Config) { c.OCR.Threshold = 256 }, "ocr.threshold"},
		{"endpoint", func(c *Config) {
			c.Translate.Enabled = true
			c.Translate.Endpoints = []string{"ftp://example.org"}
		}, "translate.endpoints"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"category pattern", func(c *Config) {
			c.Categories = []CategoryRule{{Name: "Thee", Pattern: "("}}
		}, "categories"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.edit(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, domainerr.ErrInvalid))

			var ve domainerr.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Len(t, ve.Items, 1)
			assert.Equal(t, tc.field, ve.Items[0].Field)
		})
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
site:
  title: Theedoos
source:
  path: decks
  default_collection: Doos
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, "Theedoos", cfg.Site.Title)
	assert.Equal(t, "decks", cfg.Source.Path)
	assert.Equal(t, "Doos", cfg.Source.DefaultCollection)
	assert.Equal(t, def.Site.PageSize, cfg.Site.PageSize)
	assert.Equal(t, def.Site.Theme, cfg.Site.Theme)
	assert.True(t, cfg.Source.InferCategories)
	assert.Equal(t, def.OCR, cfg.OCR)
	assert.Equal(t, def.Categories, cfg.Categories)
	assert.False(t, cfg.Build.Now.IsZero())
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeYAML(t, "site:\n  page_size: 0\n"))
	assert.ErrorIs(t, err, domainerr.ErrInvalid)

	_, err = Load(writeYAML(t, "site: [\n"))
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEATOPICS_ADDR", "127.0.0.1:9000")
	t.Setenv("TEATOPICS_SOURCE", "/srv/topics.json")
	t.Setenv("TEATOPICS_LIBRARY", "/var/lib/teatopics.db")
	t.Setenv("TEATOPICS_LOG_LEVEL", "debug")
	t.Setenv("TEATOPICS_TRANSLATE_ENDPOINTS", " https://a.example/translate, ,https://b.example/translate ")
	t.Setenv("TEATOPICS_TRANSLATE_API_KEY", "sleutel")
	t.Setenv("TEATOPICS_TRANSLATE_TIMEOUT", "3")
	t.Setenv("VALKEY_INIT_ADDRESS", "localhost:6379")
	t.Setenv("VALKEY_PASSWORD", "geheim")
	t.Setenv("VALKEY_TLS", "true")

	cfg := Default()
	cfg.ApplyEnv()

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "/srv/topics.json", cfg.Source.Path)
	assert.Equal(t, "/var/lib/teatopics.db", cfg.Library.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"https://a.example/translate", "https://b.example/translate"}, cfg.Translate.Endpoints)
	assert.True(t, cfg.Translate.Enabled)
	assert.Equal(t, "sleutel", cfg.Translate.APIKey)
	assert.Equal(t, 3, cfg.Translate.TimeoutSeconds)
	assert.Equal(t, ValkeyConfig{Address: "localhost:6379", Password: "geheim", TLS: true}, cfg.Translate.Valkey)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnvIgnoresBadTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEATOPICS_TRANSLATE_TIMEOUT", "snel")
	cfg := Default()
	cfg.ApplyEnv()
	assert.Equal(t, 8, cfg.Translate.TimeoutSeconds)
}

func TestLoadOrDefaultFallsBackWhenMissing(t *testing.T) {
	clearEnv(t)
	t.Setenv("TEATOPICS_ADDR", ":9999")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, Default().Site.Title, cfg.Site.Title)
}

func TestLoadOrDefaultSurfacesOtherErrors(t *testing.T) {
	clearEnv(t)
	_, err := LoadOrDefault(writeYAML(t, "log:\n  format: xml\n"))
	assert.ErrorIs(t, err, domainerr.ErrInvalid)
}

func TestLoadEnvReadsDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TEATOPICS_ADDR=:7070\n"), 0o644))
	// gotenv.Load does not override variables that are already set.
	require.NoError(t, os.Unsetenv("TEATOPICS_ADDR"))

	require.NoError(t, LoadEnv("", filepath.Join(t.TempDir(), "absent.env"), path))
	assert.Equal(t, ":7070", os.Getenv("TEATOPICS_ADDR"))
}
