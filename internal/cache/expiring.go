// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/metrics"
)

const (
	// DefaultCapacity bounds each namespace when no capacity is configured.
	DefaultCapacity = 10000

	// maxKeyLength is the longest key stored verbatim. Raw review texts are
	// used as sentiment keys, so anything longer is replaced by a prefix
	// plus content hash to keep per-entry key memory bounded.
	maxKeyLength = 1000

	// keyPrefixLength is how much of an oversized key survives hashing,
	// kept so truncated keys remain recognizable in debug output.
	keyPrefixLength = 64
)

// entry is a cached value with its expiry. Recency lives in the namespace's
// heap rather than here so eviction ordering has a single source of truth.
type entry struct {
	value     any
	expiresAt time.Time // zero means the entry never expires
}

// namespace is an isolated key space with its own lock. Eviction or a burst
// of writes in one namespace never blocks reads in another.
type namespace struct {
	mu      sync.Mutex
	entries map[string]*entry
	recency *recencyHeap

	hits      int64
	misses    int64
	evictions int64
}

// Cache is a bounded, multi-namespace store for computed inference results.
//
// Key features:
//   - Per-namespace locking (namespaces are created on first use)
//   - Optional per-entry TTL with lazy expiry on read
//   - Hits refresh recency, so frequently read entries survive eviction
//   - Capacity eviction removes the oldest tenth of a namespace in one pass
//
// All operations are safe for concurrent use and never return an error; a
// miss is a normal outcome.
type Cache struct {
	mu         sync.RWMutex // guards the namespaces map, not the namespaces
	namespaces map[string]*namespace
	capacity   int
}

// Stats is a point-in-time snapshot of counters summed across namespaces.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
}

// New creates a cache where each namespace holds at most capacity entries.
// A capacity of zero or less selects DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		namespaces: make(map[string]*namespace),
		capacity:   capacity,
	}
}

// Get retrieves the value stored under key in the given namespace.
//
// A live hit refreshes the entry's recency. An entry found past its expiry
// is deleted and reported as a miss; expiry is only ever checked here,
// there is no background sweeper.
func (c *Cache) Get(nsName, key string) (any, bool) {
	n := c.ns(nsName)
	key = normalizeKey(key)
	now := time.Now()

	n.mu.Lock()
	defer n.mu.Unlock()

	e, ok := n.entries[key]
	if !ok {
		n.misses++
		metrics.CacheMisses.WithLabelValues(nsName).Inc()
		return nil, false
	}

	if !e.expiresAt.IsZero() && now.After(e.expiresAt) {
		delete(n.entries, key)
		n.recency.remove(key)
		n.misses++
		n.evictions++
		metrics.CacheMisses.WithLabelValues(nsName).Inc()
		metrics.CacheEvictions.WithLabelValues(nsName, "expired").Inc()
		metrics.CacheSize.WithLabelValues(nsName).Set(float64(len(n.entries)))
		return nil, false
	}

	n.recency.touch(key, now)
	n.hits++
	metrics.CacheHits.WithLabelValues(nsName).Inc()
	return e.value, true
}

// Put stores value under key in the given namespace, overwriting any
// previous entry. A ttl of zero or less means the entry never expires.
//
// When the namespace exceeds its capacity, the oldest tenth of its entries
// by last write or read is evicted in one pass.
func (c *Cache) Put(nsName, key string, value any, ttl time.Duration) {
	n := c.ns(nsName)
	key = normalizeKey(key)
	now := time.Now()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = now.Add(ttl)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.entries[key] = &entry{value: value, expiresAt: expiresAt}
	n.recency.touch(key, now)

	if len(n.entries) > c.capacity {
		evicted := n.evictOldest(c.capacity / 10)
		n.evictions += int64(evicted)
		metrics.CacheEvictions.WithLabelValues(nsName, "capacity").Add(float64(evicted))
	}

	metrics.CacheSize.WithLabelValues(nsName).Set(float64(len(n.entries)))
}

// Size returns the number of entries in the namespace. Entries past their
// TTL still count until a Get observes them.
func (c *Cache) Size(nsName string) int {
	n := c.ns(nsName)
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}

// Clear drops every entry in the namespace. Counters are preserved.
func (c *Cache) Clear(nsName string) {
	n := c.ns(nsName)
	n.mu.Lock()
	defer n.mu.Unlock()

	n.entries = make(map[string]*entry)
	n.recency = newRecencyHeap()
	metrics.CacheSize.WithLabelValues(nsName).Set(0)
}

// Stats returns counters summed across all namespaces.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var s Stats
	for _, n := range c.namespaces {
		n.mu.Lock()
		s.Hits += n.hits
		s.Misses += n.misses
		s.Evictions += n.evictions
		s.Entries += len(n.entries)
		n.mu.Unlock()
	}
	return s
}

// ns returns the namespace with the given name, creating it on first use.
func (c *Cache) ns(name string) *namespace {
	c.mu.RLock()
	n, ok := c.namespaces[name]
	c.mu.RUnlock()
	if ok {
		return n
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok = c.namespaces[name]; ok {
		return n
	}
	n = &namespace{
		entries: make(map[string]*entry),
		recency: newRecencyHeap(),
	}
	c.namespaces[name] = n
	return n
}

// evictOldest removes up to count entries in oldest-first order.
// Must be called with the namespace lock held.
func (n *namespace) evictOldest(count int) int {
	if count < 1 {
		count = 1
	}

	removed := 0
	for removed < count {
		key, ok := n.recency.popOldest()
		if !ok {
			break
		}
		delete(n.entries, key)
		removed++
	}
	return removed
}

// normalizeKey bounds key length. Keys over maxKeyLength are replaced by a
// fixed-length prefix plus a SHA-256 content hash, preserving uniqueness
// with overwhelming probability while bounding memory for large texts.
func normalizeKey(key string) string {
	if len(key) <= maxKeyLength {
		return key
	}
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%s:%x", key[:keyPrefixLength], sum)
}

// Key builds a deterministic cache key from an operation name and its
// parameters. Parameters are serialized to JSON and hashed, so composite
// inputs such as text batches produce compact, collision-resistant keys.
func Key(operation string, params any) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to simple string key
		return fmt.Sprintf("%s:%v", operation, params)
	}

	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", operation, sum[:16])
}
