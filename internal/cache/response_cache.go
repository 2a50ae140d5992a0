// Package cache provides the exact-match response cache for generated
// answers. The cache is a pure query→answer memo: keys are a hash of the
// literal query text, so classification or prompt changes never split
// entries. Fuzzy matching belongs to the relevance layer, not here.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/haawall/haawall-go/internal/metrics"
)

// DefaultMaxEntries is the ceiling applied when none is configured.
const DefaultMaxEntries = 1000

// entry holds a cached answer with its insertion sequence number.
// Insertion order, not access order, governs trim retention.
type entry struct {
	answer string
	seq    uint64
}

// ResponseCache is a bounded, content-addressed answer cache.
type ResponseCache struct {
	mu         sync.Mutex
	entries    map[string]entry
	seq        uint64
	maxEntries int
	metrics    *metrics.Metrics
	onClear    []func()
}

// NewResponseCache creates a response cache with the given entry ceiling.
// maxEntries <= 0 selects DefaultMaxEntries.
func NewResponseCache(maxEntries int, m *metrics.Metrics) *ResponseCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &ResponseCache{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		metrics:    m,
	}
}

// Key returns the cache key for a query: a hex SHA-256 of the exact,
// unnormalized query string.
func Key(query string) string {
	sum := sha256.Sum256([]byte(query))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached answer for the exact query text.
func (c *ResponseCache) Get(query string) (string, bool) {
	c.mu.Lock()
	e, ok := c.entries[Key(query)]
	c.mu.Unlock()

	if ok {
		c.metrics.RecordCacheHit("response")
		return e.answer, true
	}
	c.metrics.RecordCacheMiss("response")
	return "", false
}

// Put stores an answer for the exact query text. When the table exceeds the
// ceiling it is opportunistically trimmed to half the ceiling, dropping the
// oldest-inserted entries first.
func (c *ResponseCache) Put(query, answer string) {
	c.mu.Lock()
	c.seq++
	c.entries[Key(query)] = entry{answer: answer, seq: c.seq}
	if len(c.entries) > c.maxEntries {
		c.trimLocked(c.maxEntries)
	}
	size := len(c.entries)
	c.mu.Unlock()

	c.metrics.SetCacheEntries("response", size)
}

// Len returns the current number of cached entries.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes all entries and runs registered invalidation hooks so
// dependent caches (embedding vectors over knowledge fragments) are
// dropped together with the answers that were derived from them.
func (c *ResponseCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	hooks := c.onClear
	c.mu.Unlock()

	c.metrics.SetCacheEntries("response", 0)
	for _, hook := range hooks {
		hook()
	}
}

// Trim retains only the most-recently-inserted maxEntries/2 entries when the
// table exceeds maxEntries. Returns the number of entries dropped.
func (c *ResponseCache) Trim(maxEntries int) int {
	if maxEntries <= 0 {
		maxEntries = c.maxEntries
	}

	c.mu.Lock()
	dropped := c.trimLocked(maxEntries)
	size := len(c.entries)
	c.mu.Unlock()

	c.metrics.SetCacheEntries("response", size)
	return dropped
}

// trimLocked performs the trim with c.mu held.
func (c *ResponseCache) trimLocked(maxEntries int) int {
	if len(c.entries) <= maxEntries {
		return 0
	}

	keep := maxEntries / 2
	type keyed struct {
		key string
		seq uint64
	}
	all := make([]keyed, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, keyed{key: k, seq: e.seq})
	}
	// Newest first.
	sort.Slice(all, func(i, j int) bool { return all[i].seq > all[j].seq })

	dropped := 0
	for _, ke := range all[keep:] {
		delete(c.entries, ke.key)
		dropped++
	}
	return dropped
}

// OnClear registers a hook invoked after every Clear. Hooks run outside the
// cache lock.
func (c *ResponseCache) OnClear(hook func()) {
	c.mu.Lock()
	c.onClear = append(c.onClear, hook)
	c.mu.Unlock()
}
