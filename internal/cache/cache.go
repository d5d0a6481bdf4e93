// Package cache stores extracted evidence page text between requests.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/ppiankov/sportcheck/internal/config"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key from an arbitrary string such as a URL
func Key(namespace, raw string) string {
	hash := sha256.Sum256([]byte(raw))
	return "sportcheck:v1:" + namespace + ":" + hex.EncodeToString(hash[:])
}

// New builds the cache described by cfg: nothing when disabled,
// memory only by default, memory over disk when a directory is set.
func New(cfg config.CacheConfig) Cache {
	if !cfg.Enabled {
		return NoopCache{}
	}
	ttl := cfg.TTL()
	if ttl <= 0 {
		ttl = time.Hour
	}
	memory := NewMemoryCache(ttl, 10*time.Minute, cfg.MaxEntries)
	if cfg.Dir == "" {
		return memory
	}
	return NewLayeredCache(memory, NewDiskCache(cfg.Dir, ttl))
}

// NoopCache never stores anything
type NoopCache struct{}

func (NoopCache) Get(string) ([]byte, bool) { return nil, false }
func (NoopCache) Set(string, []byte, time.Duration) error { return nil }
func (NoopCache) Delete(string) error { return nil }
func (NoopCache) Clear() error { return nil }
