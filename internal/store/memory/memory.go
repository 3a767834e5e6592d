// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package memory is an in-process backend for the catalog, favorites and
// profiles. It backs local development and tests; nothing is persisted.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/favorites"
	"github.com/tomtom215/verdure/internal/profiles"
)

// Store implements catalog.Store, favorites.Store and profiles.Store.
type Store struct {
	mu        sync.RWMutex
	items     []catalog.Item // newest first
	favorites map[string]map[string]struct{}
	profiles  map[string]profiles.Profile
	now       func() time.Time
	newID     func() string
}

var (
	_ catalog.Store   = (*Store)(nil)
	_ favorites.Store = (*Store)(nil)
	_ profiles.Store  = (*Store)(nil)
)

// New returns an empty store.
func New() *Store {
	return &Store{
		favorites: make(map[string]map[string]struct{}),
		profiles:  make(map[string]profiles.Profile),
		now:       time.Now,
		newID:     func() string { return uuid.New().String() },
	}
}

// NewSeeded returns a store holding the demo catalog and its owners.
func NewSeeded() *Store {
	s := New()
	s.items = SeedItems()
	for _, p := range SeedProfiles() {
		s.profiles[p.ID] = p
	}
	return s
}

// ListItems returns a copy of the catalog, newest listing first.
func (s *Store) ListItems(_ context.Context) ([]catalog.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]catalog.Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

// AddListing builds the listing and puts it at the front of the catalog.
func (s *Store) AddListing(_ context.Context, ownerID string, listing catalog.NewListing) (catalog.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.profiles[ownerID]; ok {
		if listing.OwnerName == "" {
			listing.OwnerName = p.DisplayName()
		}
		if listing.OwnerAvatar == "" {
			listing.OwnerAvatar = p.AvatarURL
		}
	}

	item := listing.Build(s.newID(), ownerID, s.now())
	s.items = append([]catalog.Item{item}, s.items...)
	return item, nil
}

// ListFavorites returns the user's favorites in ascending ID order.
func (s *Store) ListFavorites(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.favorites[userID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) UpsertFavorite(_ context.Context, userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.favorites[userID]
	if !ok {
		set = make(map[string]struct{})
		s.favorites[userID] = set
	}
	set[itemID] = struct{}{}
	return nil
}

func (s *Store) DeleteFavorite(_ context.Context, userID, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.favorites[userID], itemID)
	return nil
}

// GetProfile returns the profile or profiles.ErrNotFound.
func (s *Store) GetProfile(_ context.Context, userID string) (profiles.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[userID]
	if !ok {
		return profiles.Profile{}, profiles.ErrNotFound
	}
	return p, nil
}

// PutProfile creates or replaces a profile.
func (s *Store) PutProfile(p profiles.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p
}
