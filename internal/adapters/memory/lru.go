// Package memory provides process-local adapters: an LRU with per-entry TTL,
// a cache and a visitor session store built on it.
package memory

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"
)

// LRU is a small in-memory LRU cache with per-entry TTL.
// Concurrency: methods are safe for concurrent use.
type LRU struct {
	mu     sync.Mutex
	cap    int
	ll     *list.List               // front = most-recently used
	items  map[string]*list.Element // key -> element
	now    func() time.Time
	hits   atomic.Uint64
	misses atomic.Uint64
	evicts atomic.Uint64
}

type lruEntry struct {
	key    string
	value  []byte
	expiry time.Time // zero means no expiry
}

// LRUConfig groups constructor options.
type LRUConfig struct {
	Capacity int
	Now      func() time.Time
}

// NewLRU creates a new LRU with the given config.
func NewLRU(cfg LRUConfig) *LRU {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 1024
	}
	nowFn := cfg.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	return &LRU{
		cap:   capacity,
		ll:    list.New(),
		items: make(map[string]*list.Element),
		now:   nowFn,
	}
}

// Get returns the value for key if present and not expired.
func (c *LRU) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, found := c.items[key]
	if !found {
		c.misses.Add(1)
		return nil, false
	}
	ent := el.Value.(*lruEntry)
	if c.isExpired(ent) {
		c.removeElement(el)
		c.misses.Add(1)
		return nil, false
	}
	c.ll.MoveToFront(el)
	c.hits.Add(1)
	return ent.value, true
}

// GetTouch is Get that also restarts the entry's TTL from now.
// ttl <= 0 leaves the expiry unchanged.
func (c *LRU) GetTouch(key string, ttl time.Duration) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, found := c.items[key]
	if !found {
		c.misses.Add(1)
		return nil, false
	}
	ent := el.Value.(*lruEntry)
	if c.isExpired(ent) {
		c.removeElement(el)
		c.misses.Add(1)
		return nil, false
	}
	if ttl > 0 {
		ent.expiry = c.now().Add(ttl)
	}
	c.ll.MoveToFront(el)
	c.hits.Add(1)
	return ent.value, true
}

// Set inserts or updates a value with TTL. ttl <= 0 means no expiration.
func (c *LRU) Set(key string, value []byte, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var exp time.Time
	if ttl > 0 {
		exp = c.now().Add(ttl)
	}

	if el, found := c.items[key]; found {
		ent := el.Value.(*lruEntry)
		ent.value = value
		ent.expiry = exp
		c.ll.MoveToFront(el)
		return
	}

	c.items[key] = c.ll.PushFront(&lruEntry{key: key, value: value, expiry: exp})
	c.evictIfNeeded()
}

// Delete removes a key and reports whether it was present and live.
func (c *LRU) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false
	}
	live := !c.isExpired(el.Value.(*lruEntry))
	c.removeElement(el)
	return live
}

// Sweep drops every expired entry and returns how many were removed.
func (c *LRU) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.ll.Back(); el != nil; {
		prev := el.Prev()
		if c.isExpired(el.Value.(*lruEntry)) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

// Len returns the current number of items, expired ones included until swept.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}

// LRUStats are simple counters for observability.
type LRUStats struct {
	Hits, Misses, Evictions uint64
	Size, Capacity          int
}

// Stats returns a snapshot of counters and sizes.
func (c *LRU) Stats() LRUStats {
	return LRUStats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evicts.Load(),
		Size:      c.Len(),
		Capacity:  c.cap,
	}
}

// caller holds c.mu
func (c *LRU) isExpired(e *lruEntry) bool {
	if e.expiry.IsZero() {
		return false
	}
	return c.now().After(e.expiry)
}

func (c *LRU) removeElement(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*lruEntry).key)
}

func (c *LRU) evictIfNeeded() {
	for c.ll.Len() > c.cap {
		el := c.ll.Back()
		if el == nil {
			return
		}
		c.removeElement(el)
		c.evicts.Add(1)
	}
}
