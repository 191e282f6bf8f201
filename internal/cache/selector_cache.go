// Package cache implements the selector cache and performance tracker
// (spec.md §4.4). Both are the only intentionally shared mutable state
// across concurrent runs (§5): thread-safe, time-bounded.
package cache

import (
	"sync"
	"time"
)

type selectorEntry struct {
	selector  string
	expiresAt time.Time
}

// SelectorKey identifies one cache slot: a named element under a CMS kind.
type SelectorKey struct {
	NamedElement string
	CMSKind      string
}

// SelectorCache memoizes (named_element, cms_kind) -> selector with a TTL.
// A process may share one instance across many orchestrator runs against
// the same CMS.
type SelectorCache struct {
	mu      sync.RWMutex
	entries map[SelectorKey]selectorEntry
	ttl     time.Duration

	hits   uint64
	misses uint64
}

func NewSelectorCache(ttl time.Duration) *SelectorCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SelectorCache{
		entries: make(map[SelectorKey]selectorEntry),
		ttl:     ttl,
	}
}

// Get returns the memoized selector, if present and unexpired.
func (c *SelectorCache) Get(key SelectorKey) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return "", false
	}
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return entry.selector, true
}

// Set memoizes selector for key with the cache's configured TTL.
func (c *SelectorCache) Set(key SelectorKey, selector string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = selectorEntry{selector: selector, expiresAt: time.Now().Add(c.ttl)}
}

// Invalidate drops one entry, or the whole cache when key is nil. Called
// when a cached selector's wait_for fails against the live page (§4.4).
func (c *SelectorCache) Invalidate(key *SelectorKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if key == nil {
		c.entries = make(map[SelectorKey]selectorEntry)
		return
	}
	delete(c.entries, *key)
}

// Size returns the current entry count, for the selector_cache_size gauge.
func (c *SelectorCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// HitsAndMisses reports cumulative hit/miss counters for C8.
func (c *SelectorCache) HitsAndMisses() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
