package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"
)

// cacheEntry represents a single cache entry with its insertion time
type cacheEntry struct {
	value      interface{}
	insertedAt time.Time
	element    *list.Element
}

// ResponseCache is an in-memory TTL cache for gateway responses.
// Expired entries are removed lazily on lookup; there is no background sweep.
// When maxSize is positive the least recently used entry is evicted on overflow.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	lruList *list.List
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	hits    uint64
	misses  uint64
}

// Option configures a ResponseCache
type Option func(*ResponseCache)

// WithMaxSize bounds the number of entries
func WithMaxSize(n int) Option {
	return func(c *ResponseCache) {
		c.maxSize = n
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(c *ResponseCache) {
		c.now = now
	}
}

// NewResponseCache creates a cache whose entries live for ttl
func NewResponseCache(ttl time.Duration, opts ...Option) *ResponseCache {
	c := &ResponseCache{
		entries: make(map[string]*cacheEntry),
		lruList: list.New(),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for fingerprint. A stale entry is evicted and reported absent.
func (c *ResponseCache) Get(fingerprint string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[fingerprint]
	if !exists || c.now().Sub(entry.insertedAt) >= c.ttl {
		c.misses++
		if exists {
			c.removeEntry(fingerprint)
		}
		return nil, false
	}

	c.lruList.MoveToFront(entry.element)
	c.hits++
	return entry.value, true
}

// Put stores value under fingerprint, overwriting any prior entry
func (c *ResponseCache) Put(fingerprint string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, exists := c.entries[fingerprint]; exists {
		entry.value = value
		entry.insertedAt = c.now()
		c.lruList.MoveToFront(entry.element)
		return
	}

	if c.maxSize > 0 && c.lruList.Len() >= c.maxSize {
		c.evictLRU()
	}

	entry := &cacheEntry{
		value:      value,
		insertedAt: c.now(),
	}
	entry.element = c.lruList.PushFront(fingerprint)
	c.entries[fingerprint] = entry
}

// Invalidate removes a specific cache entry
func (c *ResponseCache) Invalidate(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeEntry(fingerprint)
}

// CacheStats represents cache statistics
type CacheStats struct {
	Size    int           `json:"size"`
	TTL     time.Duration `json:"ttl_ns"`
	Hits    uint64        `json:"hits"`
	Misses  uint64        `json:"misses"`
	HitRate float64       `json:"hit_rate"`
}

// Stats returns cache statistics
func (c *ResponseCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := CacheStats{
		Size:   c.lruList.Len(),
		TTL:    c.ttl,
		Hits:   c.hits,
		Misses: c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// removeEntry removes an entry from the cache (must be called with lock held)
func (c *ResponseCache) removeEntry(fingerprint string) {
	if entry, exists := c.entries[fingerprint]; exists {
		c.lruList.Remove(entry.element)
		delete(c.entries, fingerprint)
	}
}

// evictLRU evicts the least recently used entry (must be called with lock held)
func (c *ResponseCache) evictLRU() {
	back := c.lruList.Back()
	if back == nil {
		return
	}
	c.lruList.Remove(back)
	delete(c.entries, back.Value.(string))
}

// Fingerprint derives a deterministic cache key from the request kind, the
// target endpoint and the request parameters. Parameter order does not matter.
func Fingerprint(kind, endpoint string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte('\n')
	b.WriteString(endpoint)
	for _, k := range keys {
		b.WriteByte('\n')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
