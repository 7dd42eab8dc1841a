package translate

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"sync"
)

// Cache stores finished translations. Implementations must be safe for
// concurrent use; a failing backend should behave like a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}

func cacheKey(target, text string) string {
	h := sha1.Sum([]byte(target + "|" + text))
	return hex.EncodeToString(h[:])
}

type MemoryCache struct {
	mu sync.RWMutex
	m  map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *MemoryCache) Set(_ context.Context, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[key] = value
}

