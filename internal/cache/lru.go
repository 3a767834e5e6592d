// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package cache provides a bounded LRU with idle expiry. The engine uses
// it to keep one workspace per active user and to tear the workspace down
// when the user goes idle or is pushed out by newer users.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	key       string
	value     V
	prev      *entry[V]
	next      *entry[V]
	expiresAt time.Time
}

// LRU is a thread-safe least-recently-used map with a sliding TTL: every
// successful Get extends the entry's lifetime. The evict callback runs for
// every entry that leaves the cache by capacity, expiry, Remove, or Purge,
// outside the cache lock.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	onEvict  func(key string, value V)
	now      func() time.Time

	items map[string]*entry[V]
	head  *entry[V] // head.next is most recent
	tail  *entry[V] // tail.prev is least recent

	hits   int64
	misses int64
}

// New creates an LRU. A ttl of zero disables expiry.
func New[V any](capacity int, ttl time.Duration, onEvict func(key string, value V)) *LRU[V] {
	if capacity <= 0 {
		capacity = 1000
	}
	c := &LRU[V]{
		capacity: capacity,
		ttl:      ttl,
		onEvict:  onEvict,
		now:      time.Now,
		items:    make(map[string]*entry[V], capacity),
		head:     &entry[V]{},
		tail:     &entry[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Get returns the value and refreshes its recency and lifetime.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	e, ok := c.items[key]
	var stale *entry[V]
	switch {
	case !ok:
		c.misses++
	case c.expired(e):
		c.unlink(e)
		stale, ok = e, false
		c.misses++
	default:
		c.touch(e)
		c.hits++
	}
	c.mu.Unlock()

	if stale != nil {
		c.evicted([]*entry[V]{stale})
	}
	if !ok {
		var zero V
		return zero, false
	}
	return e.value, true
}

// GetOrCreate returns the live value for key or stores the result of
// create. create runs under the cache lock and must not call back into it.
func (c *LRU[V]) GetOrCreate(key string, create func() (V, error)) (V, bool, error) {
	c.mu.Lock()
	var out []*entry[V]
	defer func() {
		c.mu.Unlock()
		c.evicted(out)
	}()

	if e, ok := c.items[key]; ok {
		if !c.expired(e) {
			c.touch(e)
			c.hits++
			return e.value, false, nil
		}
		c.unlink(e)
		out = append(out, e)
	}
	c.misses++

	v, err := create()
	if err != nil {
		var zero V
		return zero, false, err
	}
	out = append(out, c.insert(key, v)...)
	return v, true, nil
}

// Add stores value, replacing and evicting any previous value for key.
func (c *LRU[V]) Add(key string, value V) {
	c.mu.Lock()
	var out []*entry[V]
	if e, ok := c.items[key]; ok {
		c.unlink(e)
		out = append(out, e)
	}
	out = append(out, c.insert(key, value)...)
	c.mu.Unlock()
	c.evicted(out)
}

// Remove evicts key. Returns false when absent.
func (c *LRU[V]) Remove(key string) bool {
	c.mu.Lock()
	e, ok := c.items[key]
	if ok {
		c.unlink(e)
	}
	c.mu.Unlock()
	if ok {
		c.evicted([]*entry[V]{e})
	}
	return ok
}

// CleanupExpired evicts every expired entry and returns how many.
func (c *LRU[V]) CleanupExpired() int {
	c.mu.Lock()
	var out []*entry[V]
	for e := c.tail.prev; e != c.head; {
		prev := e.prev
		if c.expired(e) {
			c.unlink(e)
			out = append(out, e)
		}
		e = prev
	}
	c.mu.Unlock()
	c.evicted(out)
	return len(out)
}

// Purge evicts everything.
func (c *LRU[V]) Purge() {
	c.mu.Lock()
	out := make([]*entry[V], 0, len(c.items))
	for e := c.head.next; e != c.tail; e = e.next {
		out = append(out, e)
	}
	c.items = make(map[string]*entry[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
	c.mu.Unlock()
	c.evicted(out)
}

// Values returns the live values, most recent first, without touching them.
func (c *LRU[V]) Values() []V {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]V, 0, len(c.items))
	for e := c.head.next; e != c.tail; e = e.next {
		if !c.expired(e) {
			out = append(out, e.value)
		}
	}
	return out
}

// Len returns the number of entries, including expired ones not yet swept.
func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns hit and miss counts and the current size.
func (c *LRU[V]) Stats() (hits, misses int64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.items)
}

// Lock must be held for the helpers below.

func (c *LRU[V]) expired(e *entry[V]) bool {
	return c.ttl > 0 && c.now().After(e.expiresAt)
}

func (c *LRU[V]) touch(e *entry[V]) {
	e.expiresAt = c.now().Add(c.ttl)
	e.prev.next = e.next
	e.next.prev = e.prev
	c.pushFront(e)
}

func (c *LRU[V]) pushFront(e *entry[V]) {
	e.prev = c.head
	e.next = c.head.next
	c.head.next.prev = e
	c.head.next = e
}

func (c *LRU[V]) unlink(e *entry[V]) {
	e.prev.next = e.next
	e.next.prev = e.prev
	delete(c.items, e.key)
}

// insert adds a new entry and returns whatever capacity pushed out.
func (c *LRU[V]) insert(key string, value V) []*entry[V] {
	e := &entry[V]{key: key, value: value, expiresAt: c.now().Add(c.ttl)}
	c.pushFront(e)
	c.items[key] = e

	var out []*entry[V]
	for len(c.items) > c.capacity {
		oldest := c.tail.prev
		c.unlink(oldest)
		out = append(out, oldest)
	}
	return out
}

func (c *LRU[V]) evicted(entries []*entry[V]) {
	if c.onEvict == nil {
		return
	}
	for _, e := range entries {
		c.onEvict(e.key, e.value)
	}
}
