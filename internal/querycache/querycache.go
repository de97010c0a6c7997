// Package querycache memoizes materialized search responses, keyed by a
// stable fingerprint of {workspace, planner-canonicalized query,
// filters, limits, response mode}, and invalidated against a
// workspace's current commit generation, per spec §4.10.
package querycache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Key identifies one cacheable query.
type Key struct {
	WorkspaceHash string
	Query         string
	Filters       any
	Limits        any
	ResponseMode  string
}

// Fingerprint canonicalizes Key to a stable hash, used both as the LRU
// key and as the continuation token's query fingerprint.
func (k Key) Fingerprint() string {
	// encoding/json sorts map keys but preserves struct field order, which
	// is already stable here, so this is a deterministic canonicalization.
	b, _ := json.Marshal(k)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// entry is what's actually stored per fingerprint.
type entry struct {
	workspaceHash    string
	response         any
	commitGeneration uint64
	size             int
	storedAt         time.Time
}

// Cache is an LRU bounded both by entry count (via golang-lru) and
// cumulative byte size, with an optional TTL.
type Cache struct {
	mu        sync.Mutex
	lru       *lru.Cache[string, *entry]
	maxBytes  int64
	curBytes  int64
	ttl       time.Duration
	now       func() time.Time
}

const defaultMaxBytes = 100 << 20 // 100 MiB
const defaultTTL = 15 * time.Minute
const defaultMaxEntries = 10000

// New constructs a Cache with spec §4.10's defaults (100 MiB, 15 min TTL).
func New() (*Cache, error) {
	return NewWithLimits(defaultMaxBytes, defaultTTL)
}

// NewWithLimits constructs a Cache with explicit byte and TTL bounds.
// ttl of zero disables expiry.
func NewWithLimits(maxBytes int64, ttl time.Duration) (*Cache, error) {
	c := &Cache{maxBytes: maxBytes, ttl: ttl, now: time.Now}
	backing, err := lru.NewWithEvict(defaultMaxEntries, func(_ string, e *entry) {
		c.curBytes -= int64(e.size)
	})
	if err != nil {
		return nil, err
	}
	c.lru = backing
	return c, nil
}

// Get returns the cached response for key if present, not expired, and
// stamped with currentGeneration -- a stale generation (the workspace
// committed since this was cached) is treated as a miss.
func (c *Cache) Get(key Key, currentGeneration uint64) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Get(key.Fingerprint())
	if !ok {
		return nil, false
	}
	if e.commitGeneration != currentGeneration {
		c.removeLocked(key.Fingerprint())
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl {
		c.removeLocked(key.Fingerprint())
		return nil, false
	}
	return e.response, true
}

// Put stores response under key's fingerprint, stamped with
// commitGeneration. sizeBytes should be the response's approximate
// marshaled size -- the caller computes it once rather than this
// package re-marshaling to measure.
func (c *Cache) Put(key Key, response any, commitGeneration uint64, sizeBytes int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fp := key.Fingerprint()
	if old, ok := c.lru.Peek(fp); ok {
		c.curBytes -= int64(old.size)
	}
	c.lru.Add(fp, &entry{
		workspaceHash:    key.WorkspaceHash,
		response:         response,
		commitGeneration: commitGeneration,
		size:             sizeBytes,
		storedAt:         c.now(),
	})
	c.curBytes += int64(sizeBytes)
	c.evictToByteBudget()
}

// evictToByteBudget removes the oldest entries until cumulative size is
// back under maxBytes -- golang-lru evicts by count, so this is the
// thin adaptation to a byte-bounded LRU. Caller must hold c.mu.
func (c *Cache) evictToByteBudget() {
	for c.maxBytes > 0 && c.curBytes > c.maxBytes && c.lru.Len() > 0 {
		c.lru.RemoveOldest()
	}
}

func (c *Cache) removeLocked(fingerprint string) {
	c.lru.Remove(fingerprint)
}

// InvalidateWorkspace drops every cached entry for a workspace, used
// when a workspace is removed from the registry or its index is
// repaired from scratch.
func (c *Cache) InvalidateWorkspace(workspaceHash string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, fp := range c.lru.Keys() {
		e, ok := c.lru.Peek(fp)
		if ok && e.workspaceHash == workspaceHash {
			c.lru.Remove(fp)
		}
	}
}

// Len reports the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Bytes reports the current cumulative byte size.
func (c *Cache) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.curBytes
}

// Purge empties the cache entirely.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
	c.curBytes = 0
}
