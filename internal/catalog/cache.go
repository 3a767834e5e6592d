// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package catalog

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/verdure/internal/metrics"
)

// CachedStore keeps a TTL snapshot of the catalog. Concurrent misses share
// one backend read. AddListing drops the snapshot so the new plant shows up
// on the next read.
type CachedStore struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu        sync.RWMutex
	items     []Item
	expiresAt time.Time
	gen       uint64
}

// NewCachedStore wraps store. A ttl of zero disables caching.
func NewCachedStore(store Store, ttl time.Duration) *CachedStore {
	return &CachedStore{store: store, ttl: ttl, now: time.Now}
}

// ListItems returns the cached snapshot or reloads it. Callers must not
// modify the returned slice.
func (c *CachedStore) ListItems(ctx context.Context) ([]Item, error) {
	if c.ttl <= 0 {
		return c.store.ListItems(ctx)
	}

	c.mu.RLock()
	if c.items != nil && c.now().Before(c.expiresAt) {
		items := c.items
		c.mu.RUnlock()
		metrics.CatalogCacheResults.WithLabelValues("hit").Inc()
		return items, nil
	}
	gen := c.gen
	c.mu.RUnlock()

	metrics.CatalogCacheResults.WithLabelValues("miss").Inc()
	v, err, _ := c.group.Do("items", func() (interface{}, error) {
		items, err := c.store.ListItems(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		// An AddListing during the read makes this snapshot stale.
		if c.gen == gen {
			c.items = items
			c.expiresAt = c.now().Add(c.ttl)
		}
		c.mu.Unlock()
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Item), nil
}

// AddListing forwards to the backend and invalidates the snapshot.
func (c *CachedStore) AddListing(ctx context.Context, ownerID string, listing NewListing) (Item, error) {
	item, err := c.store.AddListing(ctx, ownerID, listing)
	if err != nil {
		return Item{}, err
	}
	c.Invalidate()
	return item, nil
}

// Invalidate drops the snapshot.
func (c *CachedStore) Invalidate() {
	c.mu.Lock()
	c.items = nil
	c.gen++
	c.mu.Unlock()
}
