package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"teatopics/internal/domain/config"
	"teatopics/internal/index"
	"teatopics/internal/ingest"
	"teatopics/internal/library"
	"teatopics/internal/logging"
	"teatopics/internal/translate"
)

const defaultConfigPath = "teatopics.yaml"

type commandContext struct {
	configFlag *string
	envFlag    *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
}

func newCommandContext(configFlag, envFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		envFlag:    envFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		if c.envFlag != nil {
			if err := config.LoadEnv(strings.TrimSpace(*c.envFlag)); err != nil {
				c.configErr = fmt.Errorf("load env file: %w", err)
				return
			}
		}
		path := defaultConfigPath
		explicit := false
		if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
			path = strings.TrimSpace(*c.configFlag)
			explicit = true
		}
		var cfg config.Config
		var err error
		if explicit {
			cfg, err = config.Load(path)
		} else {
			cfg, err = config.LoadOrDefault(path)
		}
		if err != nil {
			c.configErr = fmt.Errorf("config %s: %w", path, err)
			return
		}
		c.config = &cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		var lc config.LogConfig
		if c.config != nil {
			lc = c.config.Log
		}
		logger, err := logging.NewFromConfig(lc)
		if err != nil {
			logger, _ = logging.New(logging.Options{})
			logger.Warn("falling back to console logging", logging.Error(err))
		}
		c.logger = logger
	})
	return c.logger
}

// openLibrary opens the store and wires it to the configured source. The
// returned func closes the store.
func (c *commandContext) openLibrary() (*library.Library, func() error, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	st, err := index.Open(index.OpenOptions{
		Path:    cfg.Library.Path,
		Timeout: time.Duration(cfg.Library.LockTimeoutSeconds) * time.Second,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open library %s: %w", cfg.Library.Path, err)
	}
	opt, err := ingest.OptionsFromConfig(*cfg)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	return library.New(st, opt, c.log()), st.Close, nil
}

// translator returns nil when translation is disabled. A valkey cache is
// used when an address is configured and reachable.
func (c *commandContext) translator(ctx context.Context) (*translate.Client, func()) {
	cfg := c.config
	if cfg == nil || !cfg.Translate.Enabled {
		return nil, func() {}
	}
	opts := []translate.Option{translate.WithLogger(c.log())}
	cleanup := func() {}
	if addr := strings.TrimSpace(cfg.Translate.Valkey.Address); addr != "" {
		cache, err := translate.NewValkeyCache(ctx, cfg.Translate.Valkey, c.log())
		if err != nil {
			c.log().Warn("valkey cache unavailable, using memory cache", logging.Error(err))
		} else {
			opts = append(opts, translate.WithCache(cache))
			cleanup = cache.Close
		}
	}
	client := translate.NewClient(translate.Config{
		Endpoints: cfg.Translate.Endpoints,
		APIKey:    cfg.Translate.APIKey,
		Timeout:   time.Duration(cfg.Translate.TimeoutSeconds) * time.Second,
	}, opts...)
	return client, cleanup
}
