// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package favorites

import (
	"context"
	"fmt"
	"time"
)

// Store persists (user, plant) favorite pairs. UpsertFavorite must be
// idempotent; DeleteFavorite of an absent pair must succeed.
type Store interface {
	ListFavorites(ctx context.Context, userID string) ([]string, error)
	UpsertFavorite(ctx context.Context, userID, itemID string) error
	DeleteFavorite(ctx context.Context, userID, itemID string) error
}

// Op identifies a store operation.
type Op int

const (
	OpUpsert Op = iota + 1
	OpDelete
	OpLoad
)

func (o Op) String() string {
	switch o {
	case OpUpsert:
		return "upsert"
	case OpDelete:
		return "delete"
	case OpLoad:
		return "load"
	default:
		return "unknown"
	}
}

// Apply performs op against store.
func (o Op) Apply(ctx context.Context, store Store, userID, itemID string) error {
	switch o {
	case OpUpsert:
		return store.UpsertFavorite(ctx, userID, itemID)
	case OpDelete:
		return store.DeleteFavorite(ctx, userID, itemID)
	default:
		return fmt.Errorf("favorites: op %s cannot be applied to a single item", o)
	}
}

// Warning reports a store call that failed. The in-memory set was not
// rolled back; the store catches up on the next successful write or load.
type Warning struct {
	UserID string    `json:"user_id"`
	ItemID string    `json:"plant_id,omitempty"`
	Op     Op        `json:"-"`
	Err    error     `json:"-"`
	At     time.Time `json:"at"`
}

func (w Warning) String() string {
	if w.ItemID == "" {
		return fmt.Sprintf("favorites %s failed: %v", w.Op, w.Err)
	}
	return fmt.Sprintf("favorites %s %s failed: %v", w.Op, w.ItemID, w.Err)
}
