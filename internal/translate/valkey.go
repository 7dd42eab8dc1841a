package translate

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"teatopics/internal/domain/config"
	"teatopics/internal/logging"
	"time"

	"github.com/valkey-io/valkey-go"
)

const (
	valkeyKeyPrefix = "teatopics:tr:"
	valkeyTTL       = 30 * 24 * time.Hour
)

// ValkeyCache shares translations between server instances.
type ValkeyCache struct {
	client valkey.Client
	logger *slog.Logger
}

func NewValkeyCache(ctx context.Context, cfg config.ValkeyConfig, logger *slog.Logger) (*ValkeyCache, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("translate: connect valkey: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Do(pingCtx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("translate: ping valkey: %w", err)
	}
	return &ValkeyCache{client: client, logger: logging.Component(logger, "valkey")}, nil
}

func (c *ValkeyCache) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.client.Do(ctx, c.client.B().Get().Key(valkeyKeyPrefix+key).Build()).ToString()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			c.logger.Debug("cache get failed", logging.Error(err))
		}
		return "", false
	}
	return v, true
}

func (c *ValkeyCache) Set(ctx context.Context, key, value string) {
	cmd := c.client.B().Setex().Key(valkeyKeyPrefix + key).Seconds(int64(valkeyTTL / time.Second)).Value(value).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Debug("cache set failed", logging.Error(err))
	}
}

func (c *ValkeyCache) Close() {
	c.client.Close()
}
