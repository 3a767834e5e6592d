// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package favorites

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/verdure/internal/metrics"
)

// writer sends ledger intents to the store, one call per item at a time.
// While a call for an item is in flight, newer intents for that item replace
// each other and only the last one is sent once the call returns. The last
// call to finish for an item therefore carries the latest intent.
type writer struct {
	userID  string
	store   Store
	timeout time.Duration
	report  func(Warning)

	mu      sync.Mutex
	pending map[string]Op // intents not yet picked up
	latest  map[string]Op // newest intent per item until its worker exits
	waiters []chan struct{}
}

func newWriter(userID string, store Store, timeout time.Duration, report func(Warning)) *writer {
	return &writer{
		userID:  userID,
		store:   store,
		timeout: timeout,
		report:  report,
		pending: make(map[string]Op),
		latest:  make(map[string]Op),
	}
}

// enqueue records the intent and starts a worker for the item if none runs.
func (w *writer) enqueue(itemID string, op Op) {
	w.mu.Lock()
	if _, superseded := w.pending[itemID]; superseded {
		metrics.LedgerWritesCoalesced.Inc()
	}
	w.pending[itemID] = op
	_, running := w.latest[itemID]
	w.latest[itemID] = op
	w.mu.Unlock()

	if !running {
		go w.drain(itemID)
	}
}

func (w *writer) drain(itemID string) {
	for {
		w.mu.Lock()
		op, ok := w.pending[itemID]
		if !ok {
			delete(w.latest, itemID)
			if len(w.latest) == 0 {
				for _, ch := range w.waiters {
					close(ch)
				}
				w.waiters = nil
			}
			w.mu.Unlock()
			return
		}
		delete(w.pending, itemID)
		w.mu.Unlock()

		w.apply(itemID, op)
	}
}

func (w *writer) apply(itemID string, op Op) {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	err := op.Apply(ctx, w.store, w.userID, itemID)
	metrics.RecordStoreWrite(op.String(), time.Since(start), err)
	if err != nil {
		w.report(Warning{UserID: w.userID, ItemID: itemID, Op: op, Err: err, At: time.Now()})
	}
}

// intents returns the newest unfinished intent per item.
func (w *writer) intents() map[string]Op {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]Op, len(w.latest))
	for id, op := range w.latest {
		out[id] = op
	}
	return out
}

// flush blocks until no item has a worker or ctx ends.
func (w *writer) flush(ctx context.Context) error {
	w.mu.Lock()
	if len(w.latest) == 0 {
		w.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	w.waiters = append(w.waiters, ch)
	w.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
