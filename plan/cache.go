package plan

import "sync"

// Cache memoizes parser output keyed by description fingerprint. Entries
// are immutable and never evicted: the set of distinct path shapes a
// program declares is bounded by its source, not by request volume.
//
// Concurrent lookups and stores are safe. Two callers racing on the same
// miss may both parse and store; the second store overwrites a structurally
// identical entry, which is harmless.
type Cache struct {
	entries map[string]*ParsedPath
	mu      sync.RWMutex
}

// NewCache creates an empty parse cache
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*ParsedPath),
	}
}

// Get retrieves a cached parse by fingerprint
func (c *Cache) Get(key string) (*ParsedPath, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	parsed, exists := c.entries[key]
	return parsed, exists
}

// Put stores a parse under its fingerprint
func (c *Cache) Put(key string, parsed *ParsedPath) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = parsed
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}
