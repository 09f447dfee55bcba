package rag

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"edu-rag/internal/models"
)

// responseCache keeps generated answers for identical requests against the
// same index. Entries expire after ttl; the least recently used entry is
// evicted once maxSize is reached.
type responseCache struct {
	mu       sync.Mutex
	entries  map[string]*cacheEntry
	order    []string
	maxSize  int
	ttl      time.Duration
	indexGen uint64
	now      func() time.Time
}

type cacheEntry struct {
	response  string
	timestamp time.Time
	indexGen  uint64
}

func newResponseCache(maxSize int, ttl time.Duration) *responseCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &responseCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

func cacheKey(q models.Query, chunks []string) string {
	h := sha256.New()
	for _, part := range []string{q.Text, q.ContentType, q.Grade, q.Chapter, q.Difficulty} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	for _, c := range chunks {
		h.Write([]byte(c))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

func (c *responseCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if entry.indexGen != c.indexGen || c.now().Sub(entry.timestamp) > c.ttl {
		c.remove(key)
		return "", false
	}
	c.moveToEnd(key)
	return entry.response, true
}

func (c *responseCache) Set(key, response string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.remove(key)
	}
	for len(c.order) >= c.maxSize {
		c.remove(c.order[0])
	}
	c.entries[key] = &cacheEntry{
		response:  response,
		timestamp: c.now(),
		indexGen:  c.indexGen,
	}
	c.order = append(c.order, key)
}

// Invalidate drops every entry; called whenever a different index is loaded.
func (c *responseCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexGen++
	c.entries = make(map[string]*cacheEntry)
	c.order = c.order[:0]
}

func (c *responseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *responseCache) remove(key string) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *responseCache) moveToEnd(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}
