// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package supabase is the hosted backend: plants, favorites and profiles
// live in Supabase Postgres tables reached through PostgREST.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	supa "github.com/supabase-community/supabase-go"

	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/favorites"
	"github.com/tomtom215/verdure/internal/profiles"
)

const profileColumns = "id, email, full_name, location, favorite_plant_type, avatar_url"

// Config names the project and its tables.
type Config struct {
	URL            string
	Key            string
	PlantsTable    string
	FavoritesTable string
	ProfilesTable  string
}

// Store implements catalog.Store, favorites.Store and profiles.Store on
// Supabase. The PostgREST client does not take a context, so a context
// that is already done short-circuits the call.
type Store struct {
	client *supa.Client
	cfg    Config
	now    func() time.Time
	newID  func() string
}

var (
	_ catalog.Store   = (*Store)(nil)
	_ favorites.Store = (*Store)(nil)
	_ profiles.Store  = (*Store)(nil)
)

// New creates a client for cfg.URL authenticated with cfg.Key.
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" || cfg.Key == "" {
		return nil, errors.New("supabase url and key are required")
	}
	if cfg.PlantsTable == "" {
		cfg.PlantsTable = "plants"
	}
	if cfg.FavoritesTable == "" {
		cfg.FavoritesTable = "favorites"
	}
	if cfg.ProfilesTable == "" {
		cfg.ProfilesTable = "profiles"
	}

	client, err := supa.NewClient(cfg.URL, cfg.Key, nil)
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Store{
		client: client,
		cfg:    cfg,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}, nil
}

// Client returns the underlying Supabase client.
func (s *Store) Client() *supa.Client {
	return s.client
}

// ListItems fetches every plant row, newest first. Rows that fail to
// decode or validate are dropped by catalog.Decode.
func (s *Store) ListItems(ctx context.Context) ([]catalog.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := s.client.From(s.cfg.PlantsTable).Select("*", "", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", s.cfg.PlantsTable, err)
	}
	items, err := catalog.Decode(data)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// AddListing inserts the built listing and returns the stored row.
func (s *Store) AddListing(ctx context.Context, ownerID string, listing catalog.NewListing) (catalog.Item, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Item{}, err
	}
	if listing.OwnerName == "" {
		if p, err := s.GetProfile(ctx, ownerID); err == nil {
			listing.OwnerName = p.DisplayName()
			listing.OwnerAvatar = p.AvatarURL
		}
	}

	item := listing.Build(s.newID(), ownerID, s.now())
	data, _, err := s.client.From(s.cfg.PlantsTable).
		Insert(item, false, "", "representation", "").
		Execute()
	if err != nil {
		return catalog.Item{}, fmt.Errorf("insert %s: %w", s.cfg.PlantsTable, err)
	}

	stored, err := catalog.Decode(data)
	if err != nil || len(stored) != 1 {
		return item, nil //nolint:nilerr // the insert succeeded; fall back to what was sent
	}
	return stored[0], nil
}

type favoriteRow struct {
	UserID  string `json:"user_id"`
	PlantID string `json:"plant_id"`
}

// ListFavorites returns the plant IDs the user has liked.
func (s *Store) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, _, err := s.client.From(s.cfg.FavoritesTable).
		Select("plant_id", "", false).
		Eq("user_id", userID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", s.cfg.FavoritesTable, err)
	}

	var rows []favoriteRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.cfg.FavoritesTable, err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.PlantID != "" {
			ids = append(ids, r.PlantID)
		}
	}
	return ids, nil
}

// UpsertFavorite inserts the pair, ignoring an existing row.
func (s *Store) UpsertFavorite(ctx context.Context, userID, itemID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := s.client.From(s.cfg.FavoritesTable).
		Upsert(favoriteRow{UserID: userID, PlantID: itemID}, "user_id,plant_id", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("upsert %s: %w", s.cfg.FavoritesTable, err)
	}
	return nil
}

// DeleteFavorite removes the pair. Deleting no rows is not an error.
func (s *Store) DeleteFavorite(ctx context.Context, userID, itemID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, _, err := s.client.From(s.cfg.FavoritesTable).
		Delete("minimal", "").
		Eq("user_id", userID).
		Eq("plant_id", itemID).
		Execute()
	if err != nil {
		return fmt.Errorf("delete %s: %w", s.cfg.FavoritesTable, err)
	}
	return nil
}

// GetProfile returns the user's profile or profiles.ErrNotFound.
func (s *Store) GetProfile(ctx context.Context, userID string) (profiles.Profile, error) {
	if err := ctx.Err(); err != nil {
		return profiles.Profile{}, err
	}
	data, _, err := s.client.From(s.cfg.ProfilesTable).
		Select(profileColumns, "", false).
		Eq("id", userID).
		Execute()
	if err != nil {
		return profiles.Profile{}, fmt.Errorf("select %s: %w", s.cfg.ProfilesTable, err)
	}

	var rows []profiles.Profile
	if err := json.Unmarshal(data, &rows); err != nil {
		return profiles.Profile{}, fmt.Errorf("decode %s: %w", s.cfg.ProfilesTable, err)
	}
	if len(rows) == 0 {
		return profiles.Profile{}, profiles.ErrNotFound
	}
	return rows[0], nil
}
