// Package cache provides a TTL cache for rendered artifacts (chart SVG, CSV
// and text exports). Entries are keyed by session ID and state revision, so a
// stale artifact can never be served: any table or threshold edit bumps the
// revision and the old key simply stops being asked for.
package cache

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Item represents a cached artifact with expiration
type Item struct {
	Data        []byte
	ContentType string
	ExpiresAt   time.Time
}

// IsExpired checks if the cache item has expired
func (i *Item) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

// Cache provides thread-safe artifact caching with TTL
type Cache struct {
	mu    sync.RWMutex
	items map[string]*Item
	ttl   time.Duration
}

// New creates a cache with the specified TTL and starts its cleanup loop
func New(ttl time.Duration) *Cache {
	cache := &Cache{
		items: make(map[string]*Item),
		ttl:   ttl,
	}

	go cache.cleanup()

	return cache
}

// cleanup removes expired items periodically
func (c *Cache) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		for key, item := range c.items {
			if item.IsExpired() {
				delete(c.items, key)
			}
		}
		c.mu.Unlock()
	}
}

// ArtifactKey builds the cache key for a session artifact. Revision is part
// of the key, which is what makes invalidation implicit.
func ArtifactKey(kind, sessionID string, revision uint64) string {
	return fmt.Sprintf("%s:%s:%s", kind, sessionID, strconv.FormatUint(revision, 10))
}

// Get retrieves an artifact from the cache
func (c *Cache) Get(key string) (*Item, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}
	if item.IsExpired() {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}

	return item, true
}

// Set stores an artifact in the cache
func (c *Cache) Set(key string, data []byte, contentType string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &Item{
		Data:        data,
		ContentType: contentType,
		ExpiresAt:   time.Now().Add(c.ttl),
	}
}

// Delete removes an artifact from the cache
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Clear removes all artifacts from the cache
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*Item)
}

// Size returns the number of cached artifacts
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Stats returns cache statistics
func (c *Cache) Stats() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	totalItems := len(c.items)
	expiredItems := 0
	totalBytes := 0

	for _, item := range c.items {
		if item.IsExpired() {
			expiredItems++
		}
		totalBytes += len(item.Data)
	}

	return map[string]interface{}{
		"total_items":   totalItems,
		"expired_items": expiredItems,
		"active_items":  totalItems - expiredItems,
		"total_bytes":   totalBytes,
		"ttl_seconds":   c.ttl.Seconds(),
	}
}
