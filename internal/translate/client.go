// Package translate sends topic texts to a LibreTranslate-compatible
// endpoint. Failures never surface: callers get the original text back.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"teatopics/internal/logging"
	"time"

	"golang.org/x/text/language"
)

const defaultTimeout = 8 * time.Second

type Config struct {
	Endpoints []string
	APIKey    string
	Timeout   time.Duration
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	cache      Cache
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithCache(cache Cache) Option {
	return func(c *Client) {
		if cache != nil {
			c.cache = cache
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.Component(logger, "translate")
	}
}

func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	var eps []string
	for _, ep := range cfg.Endpoints {
		if ep = strings.TrimSpace(ep); ep != "" {
			eps = append(eps, ep)
		}
	}
	cfg.Endpoints = eps

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		cache:      NewMemoryCache(),
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Q      []string `json:"q"`
	Source string   `json:"source"`
	Target string   `json:"target"`
	Format string   `json:"format"`
	APIKey string   `json:"api_key,omitempty"`
}

type response struct {
	TranslatedText []string `json:"translatedText"`
	Error          string   `json:"error"`
}

// NormalizeTarget reduces a language tag to its base ISO 639-1 code
// ("nl-BE" -> "nl"). Unknown tags yield "".
func NormalizeTarget(target string) string {
	tag, err := language.Parse(strings.TrimSpace(target))
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No || base.String() == "und" {
		return ""
	}
	return base.String()
}

// Translate returns texts translated to target, in the same order. Cached
// entries skip the network; anything that cannot be translated comes back
// unchanged.
func (c *Client) Translate(ctx context.Context, texts []string, target string) []string {
	out := append([]string(nil), texts...)
	target = NormalizeTarget(target)
	if target == "" || len(texts) == 0 {
		return out
	}

	missIdx := make(map[string][]int)
	var misses []string
	for i, t := range texts {
		if strings.TrimSpace(t) == "" {
			continue
		}
		if v, ok := c.cache.Get(ctx, cacheKey(target, t)); ok {
			out[i] = v
			continue
		}
		if _, ok := missIdx[t]; !ok {
			misses = append(misses, t)
		}
		missIdx[t] = append(missIdx[t], i)
	}
	if len(misses) == 0 {
		return out
	}

	translated, err := c.fetch(ctx, misses, target)
	if err != nil {
		c.logger.Debug("translation unavailable, keeping original text", logging.Error(err), slog.Int("texts", len(misses)))
		return out
	}
	for j, src := range misses {
		c.cache.Set(ctx, cacheKey(target, src), translated[j])
		for _, i := range missIdx[src] {
			out[i] = translated[j]
		}
	}
	return out
}

var errNoEndpoints = errors.New("translate: no endpoints configured")

func (c *Client) fetch(ctx context.Context, texts []string, target string) ([]string, error) {
	if len(c.cfg.Endpoints) == 0 {
		return nil, errNoEndpoints
	}
	body, err := json.Marshal(request{Q: texts, Source: "auto", Target: target, Format: "text", APIKey: c.cfg.APIKey})
	if err != nil {
		return nil, err
	}

	var errs []error
	for _, ep := range c.cfg.Endpoints {
		res, err := c.post(ctx, ep, body)
		if err == nil && len(res) != len(texts) {
			err = fmt.Errorf("got %d translations for %d texts", len(res), len(texts))
		}
		if err == nil {
			return res, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", ep, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	var r response
	if resp.StatusCode != http.StatusOK {
		_ = json.Unmarshal(data, &r)
		if r.Error != "" {
			return nil, fmt.Errorf("status %d: %s", resp.StatusCode, r.Error)
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return r.TranslatedText, nil
}
