// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package favorites owns a user's set of liked plants.
//
// The Ledger applies Like and Unlike to its in-memory set immediately and
// persists them to the Store in the background. Local state is the source
// of truth for the running session: a failed store call is reported on the
// Warnings channel and never rolled back. Writes for one plant are
// serialized and coalesced so the store ends up with the last local intent
// even when the user toggles quickly.
//
//	ledger, err := favorites.NewLedger(userID, store, favorites.DefaultOptions())
//	if err != nil {
//	    return err // identity.ErrAuthRequired
//	}
//	_ = ledger.Load(ctx)
//	ledger.Like("plant-1")
package favorites

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/identity"
	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/metrics"
)

// ErrLedgerClosed is returned by Load and TryLike after Close.
var ErrLedgerClosed = errors.New("favorites ledger closed")

// Options tune a Ledger.
type Options struct {
	// WarningBuffer is the capacity of the Warnings channel. Warnings beyond
	// it are logged and dropped.
	WarningBuffer int

	// WriteTimeout bounds each store call. Zero means no bound.
	WriteTimeout time.Duration
}

// DefaultOptions returns the default ledger options.
func DefaultOptions() Options {
	return Options{
		WarningBuffer: 32,
		WriteTimeout:  10 * time.Second,
	}
}

// Ledger is the favorites set of one user.
type Ledger struct {
	userID   string
	store    Store
	writer   *writer
	warnings chan Warning
	logger   zerolog.Logger

	mu     sync.RWMutex
	set    catalog.IDSet
	loaded bool // last Load read the store successfully
	closed bool
}

// NewLedger creates an empty ledger for userID. Call Load to populate it.
func NewLedger(userID string, store Store, opts Options) (*Ledger, error) {
	if err := identity.Require(userID); err != nil {
		return nil, err
	}
	if opts.WarningBuffer < 0 {
		opts.WarningBuffer = 0
	}

	l := &Ledger{
		userID:   userID,
		store:    store,
		warnings: make(chan Warning, opts.WarningBuffer),
		logger:   logging.WithComponent("ledger").With().Str("user_id", userID).Logger(),
		set:      make(catalog.IDSet),
	}
	l.writer = newWriter(userID, store, opts.WriteTimeout, l.warn)
	return l, nil
}

// UserID returns the owner of the ledger.
func (l *Ledger) UserID() string {
	return l.userID
}

// Warnings delivers store failures. The channel is never closed.
func (l *Ledger) Warnings() <-chan Warning {
	return l.warnings
}

// Load replaces the set with the persisted favorites. Intents still being
// written are applied on top so local decisions are not lost. When the
// store fails the set becomes empty (apart from those intents), a warning is
// emitted, and Load returns nil; Loaded stays false until a later Load
// succeeds.
func (l *Ledger) Load(ctx context.Context) error {
	if l.isClosed() {
		return ErrLedgerClosed
	}

	ids, err := l.store.ListFavorites(ctx, l.userID)
	if err != nil {
		metrics.LedgerLoadFailures.Inc()
		l.warn(Warning{UserID: l.userID, Op: OpLoad, Err: err, At: time.Now()})
		ids = nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLedgerClosed
	}

	set := catalog.NewIDSet(ids...)
	for id, op := range l.writer.intents() {
		if op == OpUpsert {
			set[id] = struct{}{}
		} else {
			delete(set, id)
		}
	}
	l.set = set
	l.loaded = err == nil
	l.logger.Debug().Int("favorites", len(set)).Bool("degraded", err != nil).Msg("Favorites loaded")
	return nil
}

// Loaded reports whether the set reflects the store. It is false before the
// first Load and after a Load that fell back to an empty set.
func (l *Ledger) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Like adds itemID and persists it in the background. The upsert is sent
// even when the plant is already liked. Returns true when membership
// changed.
func (l *Ledger) Like(itemID string) bool {
	added, _ := l.TryLike(itemID)
	return added
}

// TryLike is Like that reports ErrLedgerClosed instead of dropping the
// like silently.
func (l *Ledger) TryLike(itemID string) (bool, error) {
	if itemID == "" {
		return false, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false, ErrLedgerClosed
	}
	added := !l.set.Has(itemID)
	l.set[itemID] = struct{}{}
	l.writer.enqueue(itemID, OpUpsert)
	return added, nil
}

// Unlike removes itemID and deletes it in the background. Unliking a plant
// that is not liked does nothing. Returns true when membership changed.
func (l *Ledger) Unlike(itemID string) bool {
	l.mu.Lock()
	if l.closed || !l.set.Has(itemID) {
		l.mu.Unlock()
		return false
	}
	delete(l.set, itemID)
	l.writer.enqueue(itemID, OpDelete)
	l.mu.Unlock()
	return true
}

// Contains reports whether itemID is liked.
func (l *Ledger) Contains(itemID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.set.Has(itemID)
}

// Len returns the number of liked plants.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.set)
}

// Snapshot returns a copy of the set.
func (l *Ledger) Snapshot() catalog.IDSet {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(catalog.IDSet, len(l.set))
	for id := range l.set {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the liked plant IDs sorted.
func (l *Ledger) IDs() []string {
	snap := l.Snapshot()
	ids := make([]string, 0, len(snap))
	for id := range snap {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Flush waits until every queued write has reached the store or ctx ends.
func (l *Ledger) Flush(ctx context.Context) error {
	return l.writer.flush(ctx)
}

// Close discards the set. Writes already queued keep running in the
// background; Close does not wait for them. Later mutations are no-ops.
func (l *Ledger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.set = catalog.IDSet{}
}

func (l *Ledger) isClosed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.closed
}

func (l *Ledger) warn(w Warning) {
	l.logger.Warn().Err(w.Err).Str("op", w.Op.String()).Str("plant_id", w.ItemID).
		Msg("Favorites store call failed")
	select {
	case l.warnings <- w:
	default:
		metrics.LedgerWarningsDropped.Inc()
		l.logger.Warn().Str("op", w.Op.String()).Msg("Warning buffer full, dropping warning")
	}
}
