package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/codefionn/codeflink/internal/logger"
)

// ResponseCache is a content-addressed cache of prior LLM responses keyed by
// the SHA-256 hash of the prompt text. Entries expire lazily after the TTL;
// inserting over capacity evicts the single oldest entry. Callers check Get
// before dispatching a provider call and Set only after a success - the
// cache never initiates generation itself.
type ResponseCache struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	entries map[string]cacheEntry

	now func() time.Time
}

type cacheEntry struct {
	response  string
	timestamp time.Time
}

// CacheStats reports the cache's current shape.
type CacheStats struct {
	Size       int           `json:"size"`
	MaxSize    int           `json:"max_size"`
	TTLSeconds float64       `json:"ttl_seconds"`
	TTL        time.Duration `json:"-"`
}

// NewResponseCache creates a cache holding at most maxSize entries, each
// valid for ttl.
func NewResponseCache(maxSize int, ttl time.Duration) *ResponseCache {
	return &ResponseCache{
		maxSize: maxSize,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Get returns the cached response for the prompt, or ok=false on a miss or
// when the entry's TTL elapsed. Expired entries are removed on read.
func (c *ResponseCache) Get(prompt string) (string, bool) {
	key := hashPrompt(prompt)

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}

	if c.now().Sub(entry.timestamp) > c.ttl {
		delete(c.entries, key)
		logger.Debug("cache entry expired for prompt hash %s", key[:16])
		return "", false
	}

	logger.Info("cache hit for prompt hash %s", key[:16])
	return entry.response, true
}

// Set stores the response under the prompt's hash. When the cache is full
// and the key is new, the entry with the smallest timestamp is evicted
// first. Setting an existing key overwrites it with a fresh timestamp.
func (c *ResponseCache) Set(prompt, response string) {
	key := hashPrompt(prompt)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	c.entries[key] = cacheEntry{
		response:  response,
		timestamp: c.now(),
	}
	logger.Debug("cached response for prompt hash %s", key[:16])
}

// evictOldest removes the globally oldest entry. Callers must hold the mutex.
func (c *ResponseCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, entry := range c.entries {
		if first || entry.timestamp.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.timestamp
			first = false
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
		logger.Debug("cache full, evicted oldest entry")
	}
}

// Clear removes all entries.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
	logger.Info("response cache cleared")
}

// Stats returns the current cache statistics.
func (c *ResponseCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Size:       len(c.entries),
		MaxSize:    c.maxSize,
		TTLSeconds: c.ttl.Seconds(),
		TTL:        c.ttl,
	}
}

func hashPrompt(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
