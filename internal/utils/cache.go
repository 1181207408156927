package utils

import (
	"os"
	"sync"
	"time"
)

// cacheEntry is a cached value with the file metadata it was derived from
type cacheEntry[V any] struct {
	value   V
	modTime time.Time
	size    int64
}

// Cache is a concurrency-safe memo table. Entries derived from a file can be
// validated against the file's modification time and size on lookup.
type Cache[K comparable, V any] struct {
	mu     sync.RWMutex
	items  map[K]*cacheEntry[V]
	hits   int
	misses int
}

// CacheStats reports cache occupancy and effectiveness
type CacheStats struct {
	Size   int
	Hits   int
	Misses int
}

// NewCache creates an empty cache
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{items: make(map[K]*cacheEntry[V])}
}

// Get returns the cached value for key
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.items[key]; ok {
		c.hits++
		return e.value, true
	}
	c.misses++
	var zero V
	return zero, false
}

// GetWithFileValidation returns the cached value for key unless filePath
// changed since it was stored, in which case the entry is evicted
func (c *Cache[K, V]) GetWithFileValidation(key K, filePath string) (V, bool) {
	var zero V

	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	stat, err := os.Stat(filePath)
	fresh := ok && err == nil && stat.ModTime().Equal(e.modTime) && stat.Size() == e.size

	c.mu.Lock()
	defer c.mu.Unlock()
	if fresh {
		c.hits++
		return e.value, true
	}
	c.misses++
	if ok {
		delete(c.items, key)
	}
	return zero, false
}

// Set stores value under key
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &cacheEntry[V]{value: value}
}

// SetWithFileInfo stores value under key together with filePath's metadata
func (c *Cache[K, V]) SetWithFileInfo(key K, value V, filePath string) error {
	stat, err := os.Stat(filePath)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = &cacheEntry[V]{value: value, modTime: stat.ModTime(), size: stat.Size()}
	return nil
}

// GetStats returns cache statistics
func (c *Cache[K, V]) GetStats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Size: len(c.items), Hits: c.hits, Misses: c.misses}
}
