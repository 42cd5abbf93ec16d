package posts

import (
	"sync"

	"github.com/starford/folio/internal/models"
)

// entry is a parsed post. Values handed out by the cache are shared between
// requests and must not be mutated.
type entry struct {
	checksum string
	meta     models.PostMetadata
	html     string
	rendered bool
}

// Cache holds parsed posts keyed by slug. An entry is only served while the
// checksum of the file on disk matches the one it was parsed from.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]entry)}
}

// Get returns the entry for slug if it was parsed from content with checksum sum.
func (c *Cache) Get(slug, sum string) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[slug]
	if !ok || e.checksum != sum {
		return entry{}, false
	}
	return e, true
}

// Put stores e for slug. A rendered entry is never replaced by an unrendered
// one for the same checksum.
func (c *Cache) Put(slug string, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.entries[slug]; ok && old.checksum == e.checksum && old.rendered && !e.rendered {
		return
	}
	c.entries[slug] = e
}

// Forget removes slug.
func (c *Cache) Forget(slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, slug)
}

// Len returns the number of cached posts.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
