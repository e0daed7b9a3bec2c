package transform

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rantsmith/backend/internal/logging"
)

// ResultCache stores rendered transformations for a bounded time.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type cacheEntry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is a TTL-based in-process ResultCache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewMemoryCache returns an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]cacheEntry)}
}

// Get returns the cached value when present and unexpired.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || now.After(entry.expires) {
		return nil, false
	}
	return entry.value, true
}

// Set stores the value until the TTL elapses.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c.mu.Lock()
	c.items[key] = cacheEntry{value: value, expires: time.Now().Add(ttl)}
	c.mu.Unlock()
}

// CachingTransformer wraps a Transformer with a ResultCache keyed by rant,
// target type, and tone.
type CachingTransformer struct {
	base  Transformer
	cache ResultCache
	ttl   time.Duration
}

// NewCachingTransformer returns a Transformer that caches results for the
// provided TTL.
func NewCachingTransformer(base Transformer, cache ResultCache, ttl time.Duration) *CachingTransformer {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachingTransformer{base: base, cache: cache, ttl: ttl}
}

// Transform returns a cached result when available, otherwise delegates and
// stores the outcome. Cache failures only cost a recomputation.
func (c *CachingTransformer) Transform(ctx context.Context, req Request) Result {
	key := fmt.Sprintf("transform:%s:%s:%s", req.RantID, req.Type, req.Tone)

	if raw, ok := c.cache.Get(ctx, key); ok {
		var cached Result
		if err := json.Unmarshal(raw, &cached); err == nil && cached.Text != "" {
			return cached
		}
	}

	result := c.base.Transform(ctx, req)

	raw, err := json.Marshal(result)
	if err != nil {
		logging.FromContext(ctx).Warn("encode transform result for cache", "error", err)
		return result
	}
	c.cache.Set(ctx, key, raw, c.ttl)

	return result
}
