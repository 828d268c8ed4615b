package data

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/braxtondiggs/chansey-go/pkg/types"
)

// MemoryCache is a thread-safe in-memory BarCache. Both Get and Set copy
// the series so cached data cannot be mutated by callers.
type MemoryCache struct {
	mu    sync.RWMutex
	cache map[string][]types.PriceBar
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{cache: make(map[string][]types.PriceBar)}
}

// Get retrieves a copy of the cached bars if present.
func (c *MemoryCache) Get(key string) ([]types.PriceBar, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	bars, ok := c.cache[key]
	if !ok {
		return nil, false
	}
	out := make([]types.PriceBar, len(bars))
	copy(out, bars)
	return out, true
}

// Set stores a copy of the bars.
func (c *MemoryCache) Set(key string, bars []types.PriceBar) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]types.PriceBar, len(bars))
	copy(stored, bars)
	c.cache[key] = stored
}

// Clear removes all cached series.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string][]types.PriceBar)
}

// Size returns the number of cached series.
func (c *MemoryCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another Provider with a bar cache.
type CachedProvider struct {
	provider Provider
	cache    BarCache
	log      *logrus.Logger
}

// NewCachedProvider wraps a provider with an in-memory cache.
func NewCachedProvider(provider Provider, log *logrus.Logger) *CachedProvider {
	return NewCachedProviderWithCache(provider, NewMemoryCache(), log)
}

// NewCachedProviderWithCache wraps a provider with a caller-supplied cache.
func NewCachedProviderWithCache(provider Provider, cache BarCache, log *logrus.Logger) *CachedProvider {
	if log == nil {
		log = logrus.New()
	}
	return &CachedProvider{provider: provider, cache: cache, log: log}
}

// Name identifies the provider.
func (p *CachedProvider) Name() string {
	return "cached " + p.provider.Name()
}

// LoadBars returns cached bars when available, loading and caching on miss.
func (p *CachedProvider) LoadBars(ctx context.Context, source string) ([]types.PriceBar, error) {
	if bars, ok := p.cache.Get(source); ok {
		return bars, nil
	}

	bars, err := p.provider.LoadBars(ctx, source)
	if err != nil {
		p.log.WithField("source", source).Warnf("bar load failed: %v", err)
		return nil, err
	}

	p.cache.Set(source, bars)
	p.log.WithFields(logrus.Fields{
		"source": source,
		"bars":   len(bars),
	}).Debug("loaded and cached bar series")
	return bars, nil
}

// ValidateBars delegates to the underlying provider.
func (p *CachedProvider) ValidateBars(bars []types.PriceBar) error {
	return p.provider.ValidateBars(bars)
}

// ClearCache drops every cached series.
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

// CacheSize returns the number of cached series.
func (p *CachedProvider) CacheSize() int {
	return p.cache.Size()
}
