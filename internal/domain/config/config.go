package config

import (
	"errors"
	"gopkg.in/yaml.v3"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	domainerr "teatopics/internal/domain/errors"
	"time"
)

type Config struct {
	Site       SiteConfig      `yaml:"site"`
	Source     SourceConfig    `yaml:"source"`
	Library    LibraryConfig   `yaml:"library"`
	Build      BuildConfig     `yaml:"build"`
	Server     ServerConfig    `yaml:"server"`
	OCR        OCRConfig       `yaml:"ocr"`
	Translate  TranslateConfig `yaml:"translate"`
	Log        LogConfig       `yaml:"log"`
	Categories []CategoryRule  `yaml:"categories"`
}

type SiteConfig struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle"`
	Language string `yaml:"language"`
	Intro    string `yaml:"intro"`
	Theme    string `yaml:"theme"`
	PageSize int    `yaml:"page_size"`
}

type SourceConfig struct {
	Path              string `yaml:"path"`
	Watch             bool   `yaml:"watch"`
	InferCategories   bool   `yaml:"infer_categories"`
	DefaultCollection string `yaml:"default_collection"`
}

type LibraryConfig struct {
	Path               string `yaml:"path"`
	LockTimeoutSeconds int    `yaml:"lock_timeout_seconds"`
}

type BuildConfig struct {
	PublicDir string    `yaml:"public_dir"`
	ThemeDir  string    `yaml:"theme_dir"`
	Now       time.Time `yaml:"-"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type OCRConfig struct {
	Binary            string  `yaml:"binary"`
	Language          string  `yaml:"language"`
	PageSegMode       int     `yaml:"psm"`
	Workers           int     `yaml:"workers"`
	DefaultCollection string  `yaml:"default_collection"`
	Crop              float64 `yaml:"crop"`
	Scale             float64 `yaml:"scale"`
	Contrast          float64 `yaml:"contrast"`
	Threshold         int     `yaml:"threshold"`
	Sharpen           bool    `yaml:"sharpen"`
}

type TranslateConfig struct {
	Enabled        bool         `yaml:"enabled"`
	Endpoints      []string     `yaml:"endpoints"`
	APIKey         string       `yaml:"api_key"`
	TimeoutSeconds int          `yaml:"timeout_seconds"`
	Target         string       `yaml:"target"`
	Valkey         ValkeyConfig `yaml:"valkey"`
}

type ValkeyConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	TLS      bool   `yaml:"tls"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CategoryRule assigns Name to topics whose text matches Pattern when the
// source did not supply a category.
type CategoryRule struct {
	Name    string `yaml:"name"`
	Pattern string `yaml:"pattern"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:    "Tea Topics",
			Subtitle: "Gespreksstarters voor bij de thee",
			Language: "nl",
			Theme:    "default",
			PageSize: 24,
		},
		Source: SourceConfig{
			Path:              "topics.json",
			Watch:             true,
			InferCategories:   true,
			DefaultCollection: "",
		},
		Library: LibraryConfig{
			Path:               ".teatopics/library.db",
			LockTimeoutSeconds: 1,
		},
		Build: BuildConfig{
			PublicDir: "public",
			ThemeDir:  "themes",
			Now:       time.Now(),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		OCR: OCRConfig{
			Binary:            "tesseract",
			Language:          "nld+eng",
			PageSegMode:       6,
			Workers:           2,
			DefaultCollection: "Nieuwe collectie (OCR)",
			Crop:              0.06,
			Scale:             2.5,
			Contrast:          1.35,
			Threshold:         175,
			Sharpen:           true,
		},
		Translate: TranslateConfig{
			Enabled: false,
			Endpoints: []string{
				"https://libretranslate.com/translate",
				"https://translate.argosopentech.com/translate",
			},
			TimeoutSeconds: 8,
			Target:         "en",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Categories: DefaultCategories(),
	}
}

func DefaultCategories() []CategoryRule {
	return []CategoryRule{
		{Name: "Thee", Pattern: `(?i)\b(thee|theezakje|theepot|kopje)\b`},
		{Name: "Eten", Pattern: `(?i)\b(eten|gerecht|koken|ontbijt|lunch|diner|taart)\b`},
		{Name: "Reizen", Pattern: `(?i)\b(reis|reizen|vakantie|land|stad)\b`},
		{Name: "Toekomst", Pattern: `(?i)\b(toekomst|later|over \d+ jaar)\b`},
		{Name: "Reflectie", Pattern: `(?i)\b(inspireert|trots|leren|geleerd|beter mens)\b`},
		{Name: "Fun", Pattern: `(?i)\b(spel|favoriete|grappig|superkracht)\b`},
		{Name: "Persoonlijk", Pattern: `(?i)\b(jij|jouw|je)\b`},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}
	if strings.TrimSpace(c.Site.Theme) == "" {
		ve.Add("site.theme", "must not be empty")
	}
	if c.Site.PageSize <= 0 || c.Site.PageSize > 500 {
		ve.Add("site.page_size", "must be between 1 and 500")
	}

	if strings.TrimSpace(c.Source.Path) == "" {
		ve.Add("source.path", "must not be empty")
	}
	if strings.TrimSpace(c.Library.Path) == "" {
		ve.Add("library.path", "must not be empty")
	}
	if c.Library.LockTimeoutSeconds < 0 {
		ve.Add("library.lock_timeout_seconds", "must not be negative")
	}
	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		ve.Add("server.addr", "must not be empty")
	}

	if c.OCR.Crop < 0 || c.OCR.Crop >= 0.5 {
		ve.Add("ocr.crop", "must be in [0, 0.5)")
	}
	if c.OCR.Scale < 0 {
		ve.Add("ocr.scale", "must not be negative")
	}
	if c.OCR.Threshold < 0 || c.OCR.Threshold > 255 {
		ve.Add("ocr.threshold", "must be in [0, 255]")
	}
	if c.OCR.Workers < 0 {
		ve.Add("ocr.workers", "must not be negative")
	}

	if c.Translate.Enabled {
		if len(c.Translate.Endpoints) == 0 {
			ve.Add("translate.endpoints", "must list at least one endpoint when enabled")
		}
		for i, ep := range c.Translate.Endpoints {
			if !isValidAbsURL(ep) {
				ve.Addf("translate.endpoints", "entry %d is not a valid absolute URL", i)
			}
		}
	}
	if c.Translate.TimeoutSeconds < 0 {
		ve.Add("translate.timeout_seconds", "must not be negative")
	}

	switch strings.ToLower(strings.TrimSpace(c.Log.Format)) {
	case "", "console", "json":
	default:
		ve.Add("log.format", "must be 'console' or 'json'")
	}

	for i, r := range c.Categories {
		if strings.TrimSpace(r.Name) == "" {
			ve.Addf("categories", "rule %d has an empty name", i)
		}
		if _, err := regexp.Compile(r.Pattern); err != nil {
			ve.Addf("categories", "rule %q: %v", r.Name, err)
		}
	}

	return ve.Err()
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	// File values overlay the defaults; absent keys keep Default().
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.ApplyEnv()

	if cfg.Build.Now.IsZero() {
		cfg.Build.Now = time.Now()
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return cfg, err
	}

	cfg = Default()
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides selected fields from TEATOPICS_* variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv("TEATOPICS_ADDR")); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("TEATOPICS_SOURCE")); v != "" {
		c.Source.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("TEATOPICS_LIBRARY")); v != "" {
		c.Library.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("TEATOPICS_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("TEATOPICS_TRANSLATE_ENDPOINTS")); v != "" {
		var eps []string
		for _, ep := range strings.Split(v, ",") {
			if ep = strings.TrimSpace(ep); ep != "" {
				eps = append(eps, ep)
			}
		}
		c.Translate.Endpoints = eps
		c.Translate.Enabled = len(eps) > 0
	}
	if v := strings.TrimSpace(os.Getenv("TEATOPICS_TRANSLATE_API_KEY")); v != "" {
		c.Translate.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv("TEATOPICS_TRANSLATE_TIMEOUT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Translate.TimeoutSeconds = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("VALKEY_INIT_ADDRESS")); v != "" {
		c.Translate.Valkey.Address = v
	}
	if v := os.Getenv("VALKEY_PASSWORD"); v != "" {
		c.Translate.Valkey.Password = v
	}
	if os.Getenv("VALKEY_TLS") == "true" {
		c.Translate.Valkey.TLS = true
	}
}
