package cache

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache holds page text in process with a TTL and an entry cap.
// Page bodies can reach the fetch size limit, so the cap keeps a long-running
// server from growing without bound.
type MemoryCache struct {
	cache      *gocache.Cache
	maxEntries int
	mu         sync.Mutex // serializes eviction with inserts
}

// NewMemoryCache creates a memory cache. maxEntries <= 0 means unbounded.
func NewMemoryCache(defaultTTL, cleanupInterval time.Duration, maxEntries int) *MemoryCache {
	return &MemoryCache{
		cache:      gocache.New(defaultTTL, cleanupInterval),
		maxEntries: maxEntries,
	}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	if val, found := c.cache.Get(key); found {
		return val.([]byte), true
	}
	return nil, false
}

// Set stores a copy of value; a zero ttl uses the cache default. When the
// cache is full the entry closest to expiry is evicted first.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	stored := append([]byte(nil), value...)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.maxEntries > 0 {
		if _, exists := c.cache.Get(key); !exists && c.cache.ItemCount() >= c.maxEntries {
			c.evict()
		}
	}
	c.cache.Set(key, stored, ttl)
	return nil
}

func (c *MemoryCache) evict() {
	c.cache.DeleteExpired()
	if c.cache.ItemCount() < c.maxEntries {
		return
	}
	var oldest string
	var oldestExp int64
	for k, item := range c.cache.Items() {
		if oldest == "" || (item.Expiration != 0 && (oldestExp == 0 || item.Expiration < oldestExp)) {
			oldest, oldestExp = k, item.Expiration
		}
	}
	if oldest != "" {
		c.cache.Delete(oldest)
	}
}

func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}
