package rag

import (
	"testing"
	"time"

	"edu-rag/internal/models"
)

func TestResponseCache(t *testing.T) {
	c := newResponseCache(2, time.Minute)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", "first")
	if got, ok := c.Get("a"); !ok || got != "first" {
		t.Fatalf("expected cached value, got %q %v", got, ok)
	}

	c.Set("b", "second")
	c.Set("c", "third")
	if _, ok := c.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("b"); ok {
		t.Error("expired entry should not be returned")
	}

	c.Set("d", "fourth")
	c.Invalidate()
	if _, ok := c.Get("d"); ok {
		t.Error("entry should be gone after invalidation")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}

func TestResponseCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := newResponseCache(2, time.Minute)

	c.Set("a", "first")
	c.Set("b", "second")
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to be cached")
	}
	c.Set("c", "third")

	if _, ok := c.Get("a"); !ok {
		t.Error("recently read entry should survive eviction")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("least recently used entry should have been evicted")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("newest entry should be cached")
	}
}

func TestCacheKey(t *testing.T) {
	q := models.Query{Text: "light", ContentType: models.ContentAssignments, Difficulty: models.DifficultyEasy}
	base := cacheKey(q, []string{"a", "b"})

	if cacheKey(q, []string{"a", "b"}) != base {
		t.Error("same request should give the same key")
	}
	if cacheKey(q, []string{"ab"}) == base {
		t.Error("chunk boundaries must be part of the key")
	}
	q.Difficulty = models.DifficultyHard
	if cacheKey(q, []string{"a", "b"}) == base {
		t.Error("difficulty must be part of the key")
	}
}
