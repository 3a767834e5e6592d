// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package wal

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/verdure/internal/favorites"
	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/metrics"
)

var (
	// ErrJournalClosed is returned by every operation after Close.
	ErrJournalClosed = errors.New("journal is closed")

	// ErrEmptyKey is returned when the user or plant ID is empty.
	ErrEmptyKey = errors.New("journal key requires user and plant IDs")
)

const (
	prefixPending = "pending:"
	keySep        = "\x00"
	lockStripes   = 64
)

// Entry is the latest unreplayed write intent for one (user, plant).
type Entry struct {
	// Seq identifies this intent. A newer Record for the same pair gets a
	// new Seq, so a stale Resolve cannot remove it.
	Seq           string    `json:"seq"`
	UserID        string    `json:"user_id"`
	ItemID        string    `json:"plant_id"`
	Op            string    `json:"op"`
	CreatedAt     time.Time `json:"created_at"`
	Attempts      int       `json:"attempts"`
	LastAttemptAt time.Time `json:"last_attempt_at,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
}

// Operation returns the favorites op the entry carries.
func (e *Entry) Operation() (favorites.Op, error) {
	switch e.Op {
	case favorites.OpUpsert.String():
		return favorites.OpUpsert, nil
	case favorites.OpDelete.String():
		return favorites.OpDelete, nil
	default:
		return 0, fmt.Errorf("journal entry %s: unknown op %q", e.Seq, e.Op)
	}
}

// Journal is a BadgerDB-backed write-ahead journal of favorite writes.
type Journal struct {
	db     *badger.DB
	config Config

	totalRecords  atomic.Int64
	totalResolves atomic.Int64

	mu     sync.RWMutex
	closed bool

	// Serializes the write path and replay for a pair so replay never
	// applies an intent that a live write is about to supersede.
	stripes [lockStripes]sync.Mutex
}

// Open opens (or creates) the journal at cfg.Path.
func Open(cfg Config) (*Journal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid journal config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Compression = options.Snappy
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	j := &Journal{db: db, config: cfg}
	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Favorites journal opened")
	return j, nil
}

func pairKey(userID, itemID string) []byte {
	return []byte(prefixPending + userID + keySep + itemID)
}

func userPrefix(userID string) []byte {
	return []byte(prefixPending + userID + keySep)
}

func (j *Journal) lockPair(userID, itemID string) func() {
	h := fnv.New32a()
	_, _ = h.Write(pairKey(userID, itemID))
	m := &j.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}

func (j *Journal) isClosed() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.closed
}

// Record stores op as the latest intent for (userID, itemID) and returns
// its sequence ID.
func (j *Journal) Record(ctx context.Context, userID, itemID string, op favorites.Op) (string, error) {
	if j.isClosed() {
		return "", ErrJournalClosed
	}
	if userID == "" || itemID == "" {
		return "", ErrEmptyKey
	}

	entry := &Entry{
		Seq:       uuid.New().String(),
		UserID:    userID,
		ItemID:    itemID,
		Op:        op.String(),
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("marshal entry: %w", err)
	}

	added := false
	err = j.db.Update(func(txn *badger.Txn) error {
		key := pairKey(userID, itemID)
		existing, _, err := getEntry(txn, key)
		if err != nil {
			return err
		}
		added = existing == nil
		e := badger.NewEntry(key, data)
		if j.config.EntryTTL > 0 {
			e = e.WithTTL(j.config.EntryTTL)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return "", fmt.Errorf("write journal entry: %w", err)
	}

	j.totalRecords.Add(1)
	if added {
		metrics.JournalPending.Inc()
	}
	return entry.Seq, nil
}

// Resolve removes the intent for (userID, itemID) if it is still seq.
// A superseded or missing entry is not an error.
func (j *Journal) Resolve(ctx context.Context, userID, itemID, seq string) error {
	if j.isClosed() {
		return ErrJournalClosed
	}

	removed := false
	err := j.db.Update(func(txn *badger.Txn) error {
		current, _, err := getEntry(txn, pairKey(userID, itemID))
		if err != nil || current == nil || current.Seq != seq {
			return err
		}
		removed = true
		return txn.Delete(pairKey(userID, itemID))
	})
	if err != nil {
		return fmt.Errorf("resolve journal entry: %w", err)
	}
	if removed {
		j.totalResolves.Add(1)
		metrics.JournalPending.Dec()
	}
	return nil
}

// Get returns the current intent for (userID, itemID), or nil.
func (j *Journal) Get(ctx context.Context, userID, itemID string) (*Entry, error) {
	if j.isClosed() {
		return nil, ErrJournalClosed
	}
	var entry *Entry
	err := j.db.View(func(txn *badger.Txn) error {
		var err error
		entry, _, err = getEntry(txn, pairKey(userID, itemID))
		return err
	})
	return entry, err
}

// RecordAttempt notes a failed replay of entry. It is a no-op if the
// entry has been superseded. Remaining TTL is preserved.
func (j *Journal) RecordAttempt(ctx context.Context, entry *Entry, lastError string) error {
	if j.isClosed() {
		return ErrJournalClosed
	}

	key := pairKey(entry.UserID, entry.ItemID)
	return j.db.Update(func(txn *badger.Txn) error {
		current, expiresAt, err := getEntry(txn, key)
		if err != nil || current == nil || current.Seq != entry.Seq {
			return err
		}

		current.Attempts++
		current.LastAttemptAt = time.Now().UTC()
		current.LastError = lastError
		*entry = *current

		data, err := json.Marshal(current)
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		e := badger.NewEntry(key, data)
		if expiresAt > 0 {
			ttl := time.Until(time.Unix(int64(expiresAt), 0)) //nolint:gosec // badger expiry is unix seconds
			if ttl <= 0 {
				return txn.Delete(key)
			}
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Discard removes the intent regardless of its sequence.
func (j *Journal) Discard(ctx context.Context, userID, itemID string) error {
	if j.isClosed() {
		return ErrJournalClosed
	}
	removed := false
	err := j.db.Update(func(txn *badger.Txn) error {
		key := pairKey(userID, itemID)
		existing, _, err := getEntry(txn, key)
		if err != nil || existing == nil {
			return err
		}
		removed = true
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("discard journal entry: %w", err)
	}
	if removed {
		metrics.JournalPending.Dec()
	}
	return nil
}

// Pending returns every unreplayed intent.
func (j *Journal) Pending(ctx context.Context) ([]*Entry, error) {
	return j.scan(ctx, []byte(prefixPending))
}

// PendingFor returns the unreplayed intents of one user.
func (j *Journal) PendingFor(ctx context.Context, userID string) ([]*Entry, error) {
	return j.scan(ctx, userPrefix(userID))
}

func (j *Journal) scan(ctx context.Context, prefix []byte) ([]*Entry, error) {
	if j.isClosed() {
		return nil, ErrJournalClosed
	}

	var entries []*Entry
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			var entry Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				logging.Warn().Err(err).Str("key", string(item.Key())).Msg("Journal skipping unreadable entry")
				continue
			}
			entries = append(entries, &entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate journal: %w", err)
	}
	return entries, nil
}

// Len counts unreplayed intents and refreshes the pending gauge.
func (j *Journal) Len() int {
	n := j.count()
	metrics.JournalPending.Set(float64(n))
	return n
}

// syncPendingGauge resets the pending gauge to the stored count, undoing
// drift from Inc/Dec calls that raced a resolve.
func (j *Journal) syncPendingGauge() {
	metrics.JournalPending.Set(float64(j.count()))
}

func (j *Journal) count() int {
	if j.isClosed() {
		return 0
	}
	n := 0
	prefix := []byte(prefixPending)
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		logging.Warn().Err(err).Msg("Journal failed to count entries")
	}
	return n
}

// RunGC reclaims value log space. In-memory journals have nothing to do.
func (j *Journal) RunGC() error {
	if j.isClosed() {
		return ErrJournalClosed
	}
	if j.config.InMemory {
		return nil
	}
	for {
		err := j.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the journal, giving up after the configured timeout.
func (j *Journal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	timeout := j.config.CloseTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	j.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- j.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		logging.Info().
			Int64("recorded", j.totalRecords.Load()).
			Int64("resolved", j.totalResolves.Load()).
			Msg("Favorites journal closed")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("journal close timeout after %v", timeout)
	}
}

func getEntry(txn *badger.Txn, key []byte) (*Entry, uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("get entry: %w", err)
	}
	var entry Entry
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &entry)
	}); err != nil {
		return nil, 0, fmt.Errorf("unmarshal entry: %w", err)
	}
	return &entry, item.ExpiresAt(), nil
}
