package dbmanager

import (
	"log"
	"strings"
	"sync"
	"time"
)

// Cache key layout: "db_info" holds the whole-schema snapshot, a bare table
// name holds that table's schema, and "<table>:sample" holds its sample.
const (
	cacheKeyDBInfo  = "db_info"
	sampleKeySuffix = ":sample"
)

type cacheEntry struct {
	value    interface{}
	storedAt time.Time
}

// SchemaCache holds introspected metadata with wall-clock expiry and
// size-bounded eviction. Eviction is by insertion order (oldest half removed
// on overflow), an approximation of LRU kept for compatibility with the
// reference behavior — not access-order.
//
// The mutex only guards map integrity. Producers run outside the critical
// section, so two concurrent refreshes of the same key may both hit the
// database and the second write wins. That duplicate work is an accepted,
// documented weakness of the reference behavior.
type SchemaCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	order      []string // insertion order, oldest first
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

// NewSchemaCache creates a cache bounded to maxEntries keys whose entries
// expire ttl after being stored.
func NewSchemaCache(maxEntries int, ttl time.Duration) *SchemaCache {
	return &SchemaCache{
		entries:    make(map[string]cacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// GetOrRefresh returns the cached value for key when present and fresh;
// otherwise it calls producer, stores the result with the current timestamp
// and returns it. A producer error is returned as-is and nothing is stored.
func (c *SchemaCache) GetOrRefresh(key string, producer func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok {
		if c.now().Sub(entry.storedAt) < c.ttl {
			c.mu.Unlock()
			return entry.value, nil
		}
	}
	c.mu.Unlock()

	value, err := producer()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists {
		c.evictIfNeeded()
		c.order = append(c.order, key)
	}
	c.entries[key] = cacheEntry{value: value, storedAt: c.now()}

	return value, nil
}

// evictIfNeeded removes the oldest half of the entries (by insertion order)
// whenever the cache is over its limit. Runs before every new insert.
// Caller must hold the lock.
func (c *SchemaCache) evictIfNeeded() {
	if len(c.entries) <= c.maxEntries {
		return
	}

	itemsToRemove := len(c.entries) / 2
	for i := 0; i < itemsToRemove && len(c.order) > 0; i++ {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}

	log.Printf("SchemaCache -> evictIfNeeded -> Cache limpiado. Entradas removidas: %d", itemsToRemove)
}

// InvalidateAll clears every entry.
func (c *SchemaCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	c.order = nil

	log.Printf("SchemaCache -> InvalidateAll -> Caché completamente limpiado")
}

// Stats reports the current cache state.
func (c *SchemaCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{
		TotalEntries:   len(c.entries),
		CacheSizeLimit: c.maxEntries,
		ExpiryHours:    int(c.ttl / time.Hour),
	}

	tables := make(map[string]bool)
	for key := range c.entries {
		if key == cacheKeyDBInfo {
			stats.HasDBInfo = true
			continue
		}
		tables[strings.TrimSuffix(key, sampleKeySuffix)] = true
	}
	stats.TablesCached = len(tables)

	if entry, ok := c.entries[cacheKeyDBInfo]; ok {
		age := int(c.now().Sub(entry.storedAt).Minutes())
		stats.DBInfoAgeMinutes = &age
	}

	return stats
}
