package relevance

import (
	"testing"
	"time"
)

func TestEmbedCache(t *testing.T) {
	t.Parallel()

	cache := NewEmbedCache(2, time.Minute)

	if _, ok := cache.Get("missing"); ok {
		t.Error("Get() on empty cache returned a value")
	}

	cache.Add("tuition fees", []float32{1, 2, 3})
	vec, ok := cache.Get("tuition fees")
	if !ok || len(vec) != 3 {
		t.Errorf("Get() = (%v, %v), want cached vector", vec, ok)
	}

	// Normalized variants share one entry
	if _, ok := cache.Get("  tuition   fees "); !ok {
		t.Error("whitespace variant missed the cache")
	}

	// LRU eviction at capacity
	cache.Add("b", []float32{1})
	cache.Add("c", []float32{2})
	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want capacity 2", cache.Len())
	}

	cache.Purge()
	if cache.Len() != 0 {
		t.Errorf("Len() after Purge = %d, want 0", cache.Len())
	}
}

func TestEmbedCacheDefaults(t *testing.T) {
	t.Parallel()

	cache := NewEmbedCache(0, 0)
	cache.Add("x", []float32{1})
	if _, ok := cache.Get("x"); !ok {
		t.Error("cache with default settings dropped an entry")
	}
}
