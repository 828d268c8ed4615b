package indicators

import "sync"

// DefaultCacheSize bounds the result cache when no explicit size is given.
const DefaultCacheSize = 512

// resultCache is a thread-safe, size-bounded store of indicator results.
// Eviction is insertion-ordered: when full, the oldest entry is dropped.
// Entries are treated as immutable by every caller.
type resultCache struct {
	mu         sync.RWMutex
	entries    map[string]*Result
	order      []string
	maxEntries int
}

func newResultCache(maxEntries int) *resultCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheSize
	}
	return &resultCache{
		entries:    make(map[string]*Result),
		maxEntries: maxEntries,
	}
}

// Get retrieves a cached result if available.
func (c *resultCache) Get(key string) (*Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result, ok := c.entries[key]
	return result, ok
}

// Set stores a result, evicting the oldest entry when the cache is full.
func (c *resultCache) Set(key string, result *Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	}
	c.entries[key] = result
}

// Clear removes all cached results.
func (c *resultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Result)
	c.order = nil
}

// Size returns the number of cached entries.
func (c *resultCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
