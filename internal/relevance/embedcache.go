package relevance

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/haawall/haawall-go/internal/stringutil"
)

// Embedding cache defaults.
const (
	DefaultEmbedCacheSize = 512
	DefaultEmbedCacheTTL  = 24 * time.Hour
)

// EmbedCache is a bounded LRU of embedding vectors keyed by a hash of the
// normalized input text.
type EmbedCache struct {
	lru *expirable.LRU[string, []float32]
}

// NewEmbedCache creates an embedding cache with the given capacity and TTL.
// Non-positive values fall back to the defaults.
func NewEmbedCache(size int, ttl time.Duration) *EmbedCache {
	if size <= 0 {
		size = DefaultEmbedCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultEmbedCacheTTL
	}
	return &EmbedCache{
		lru: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// Key hashes the normalized text so trivial whitespace differences share
// one cache entry.
func (c *EmbedCache) Key(text string) string {
	sum := sha256.Sum256([]byte(stringutil.Normalize(text)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached vector for text, if present.
func (c *EmbedCache) Get(text string) ([]float32, bool) {
	return c.lru.Get(c.Key(text))
}

// Add stores a vector for text.
func (c *EmbedCache) Add(text string, vector []float32) {
	c.lru.Add(c.Key(text), vector)
}

// Purge drops all cached vectors.
func (c *EmbedCache) Purge() {
	c.lru.Purge()
}

// Len returns the number of cached vectors.
func (c *EmbedCache) Len() int {
	return c.lru.Len()
}
