package provider

import (
	"sync"
	"time"

	"flightops-platform/internal/models"
	"flightops-platform/pkg/metrics"
)

// Clock returns the current time; injectable for deterministic tests.
type Clock func() time.Time

type cacheEntry struct {
	response  *models.FlightsResponse
	fetchedAt time.Time
}

// Cache is a time-bounded memoization of provider responses, keyed by query
// shape. An entry is a hit while its age is under the cache duration; entries
// older than the expiry window are purged opportunistically after each write.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	duration time.Duration
	expiry   time.Duration
	clock    Clock
	metrics  *metrics.Collector
}

// NewCache creates a response cache. expiry must be >= duration: it is the
// grace period before a stale entry is deleted outright.
func NewCache(duration, expiry time.Duration, clock Clock, metricsCollector *metrics.Collector) *Cache {
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		entries:  make(map[string]cacheEntry),
		duration: duration,
		expiry:   expiry,
		clock:    clock,
		metrics:  metricsCollector,
	}
}

// Get returns the cached response for key, or nil and false on a miss. Stale
// entries are never served.
func (c *Cache) Get(key string) (*models.FlightsResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || c.clock().Sub(entry.fetchedAt) >= c.duration {
		if c.metrics != nil {
			c.metrics.CacheMissesTotal.Inc()
		}
		return nil, false
	}

	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	return entry.response, true
}

// Put stores a response under key and purges entries past the expiry window.
func (c *Cache) Put(key string, response *models.FlightsResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{response: response, fetchedAt: c.clock()}
	c.evictExpiredLocked()

	if c.metrics != nil {
		c.metrics.CacheEntries.Set(float64(len(c.entries)))
	}
}

// EvictExpired purges all entries older than the expiry window.
func (c *Cache) EvictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.evictExpiredLocked()

	if c.metrics != nil {
		c.metrics.CacheEntries.Set(float64(len(c.entries)))
	}
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) evictExpiredLocked() {
	now := c.clock()
	for key, entry := range c.entries {
		if now.Sub(entry.fetchedAt) > c.expiry {
			delete(c.entries, key)
			if c.metrics != nil {
				c.metrics.CacheEvictionsTotal.Inc()
			}
		}
	}
}
