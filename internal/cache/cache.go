// Package cache provides a time-bounded in-memory cache for memoizing
// expensive font lookups.
package cache

import (
	"log/slog"
	"sync"
	"time"
)

type entry struct {
	value     any
	expiresAt time.Time
}

// Cache is a TTL key/value store. Expired entries are removed lazily on
// Get and in bulk by SweepExpired; a value is never returned past its
// expiry even while still physically stored.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]entry
	defaultTTL time.Duration
	logger     *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New creates a cache with the given default TTL.
func New(defaultTTL time.Duration) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Cache{
		entries:    make(map[string]entry),
		defaultTTL: defaultTTL,
		logger:     slog.Default(),
		now:        time.Now,
	}
}

// SetLogger sets a custom logger.
func (c *Cache) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Get retrieves a value from the cache if it has not expired. A present
// but expired entry is removed as a side effect.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.logger.Debug("cache miss", "key", key)
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		c.logger.Debug("cache expired", "key", key)
		return nil, false
	}

	c.logger.Debug("cache hit", "key", key)
	return e.value, true
}

// Set stores a value, unconditionally overwriting any existing entry.
// A non-positive ttl selects the default TTL.
func (c *Cache) Set(key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{value: value, expiresAt: c.now().Add(ttl)}
	c.logger.Debug("cache set", "key", key, "ttl", ttl)
}

// Clear drops all entries unconditionally.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
	c.logger.Debug("cache cleared")
}

// Len returns the number of physically stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// SweepExpired removes every expired entry in one pass and returns the
// number removed. Called by the background scheduler, not the hot path.
func (c *Cache) SweepExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}

	if removed > 0 {
		c.logger.Debug("swept expired cache entries", "count", removed)
	}
	return removed
}
