// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package wal

import (
	"context"

	"github.com/tomtom215/verdure/internal/favorites"
	"github.com/tomtom215/verdure/internal/logging"
)

// JournaledStore records each favorite write in the journal before
// passing it to the wrapped store, and resolves the entry once the store
// accepts it. A failed write stays journaled for the Replayer.
type JournaledStore struct {
	store   favorites.Store
	journal *Journal
}

var _ favorites.Store = (*JournaledStore)(nil)

// NewJournaledStore wraps store with journal.
func NewJournaledStore(store favorites.Store, journal *Journal) *JournaledStore {
	return &JournaledStore{store: store, journal: journal}
}

// ListFavorites returns the store's favorites with journaled intents
// applied on top, so writes that never reached the store still show.
func (s *JournaledStore) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	pending, err := s.journal.PendingFor(ctx, userID)
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Journal unavailable, listing store favorites only")
		return s.store.ListFavorites(ctx, userID)
	}

	ids, err := s.store.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return ids, nil
	}

	overlay := make(map[string]favorites.Op, len(pending))
	for _, e := range pending {
		op, opErr := e.Operation()
		if opErr != nil {
			continue
		}
		overlay[e.ItemID] = op
	}

	out := make([]string, 0, len(ids)+len(overlay))
	for _, id := range ids {
		if op, ok := overlay[id]; ok {
			if op == favorites.OpUpsert {
				out = append(out, id)
			}
			delete(overlay, id)
			continue
		}
		out = append(out, id)
	}
	for _, e := range pending {
		if op, ok := overlay[e.ItemID]; ok && op == favorites.OpUpsert {
			out = append(out, e.ItemID)
			delete(overlay, e.ItemID)
		}
	}
	return out, nil
}

func (s *JournaledStore) UpsertFavorite(ctx context.Context, userID, itemID string) error {
	return s.write(ctx, userID, itemID, favorites.OpUpsert)
}

func (s *JournaledStore) DeleteFavorite(ctx context.Context, userID, itemID string) error {
	return s.write(ctx, userID, itemID, favorites.OpDelete)
}

func (s *JournaledStore) write(ctx context.Context, userID, itemID string, op favorites.Op) error {
	unlock := s.journal.lockPair(userID, itemID)
	defer unlock()

	seq, err := s.journal.Record(ctx, userID, itemID, op)
	if err != nil {
		// Without a journal entry the write is only as durable as the store call.
		logging.Ctx(ctx).Warn().Err(err).Str("plant_id", itemID).Str("op", op.String()).Msg("Favorite write not journaled")
		return op.Apply(ctx, s.store, userID, itemID)
	}

	if err := op.Apply(ctx, s.store, userID, itemID); err != nil {
		return err
	}

	if err := s.journal.Resolve(ctx, userID, itemID, seq); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("plant_id", itemID).Msg("Failed to resolve journal entry")
	}
	return nil
}
