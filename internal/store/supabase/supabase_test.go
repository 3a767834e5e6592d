// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/tomtom215/verdure/internal/profiles"
)

// fakeRest answers PostgREST requests by table name.
type fakeRest struct {
	mu       sync.Mutex
	bodies   map[string]string
	status   int
	requests []*http.Request
}

func (f *fakeRest) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Clone(context.Background()))
	status := f.status
	body := "[]"
	for table, b := range f.bodies {
		if strings.HasSuffix(r.URL.Path, "/"+table) {
			body = b
		}
	}
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Range", "0-0/*")
	if status >= 400 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"code":"XX000","message":"backend down"}`))
		return
	}
	_, _ = w.Write([]byte(body))
}

func (f *fakeRest) last() *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newTestStore(t *testing.T, f *fakeRest) *Store {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	s, err := New(Config{URL: srv.URL, Key: "service-key"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_RequiresURLAndKey(t *testing.T) {
	if _, err := New(Config{URL: "https://example.supabase.co"}); err == nil {
		t.Error("expected error without key")
	}
	if _, err := New(Config{Key: "k"}); err == nil {
		t.Error("expected error without url")
	}
}

func TestNew_DefaultTables(t *testing.T) {
	s, err := New(Config{URL: "https://example.supabase.co", Key: "k"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.cfg.PlantsTable != "plants" || s.cfg.FavoritesTable != "favorites" || s.cfg.ProfilesTable != "profiles" {
		t.Errorf("default tables = %+v", s.cfg)
	}
}

func TestStore_ListItemsNewestFirst(t *testing.T) {
	f := &fakeRest{bodies: map[string]string{
		"plants": `[
			{"id":"old","owner_id":"o1","tags":["a"],"created_at":"2024-01-01T00:00:00Z"},
			{"id":"","owner_id":"o1"},
			{"id":"new","owner_id":"o2","tags":["b"],"created_at":"2024-02-01T00:00:00Z"}
		]`,
	}}
	s := newTestStore(t, f)

	items, err := s.ListItems(context.Background())
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	var ids []string
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	if want := []string{"new", "old"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ListItems() ids = %v, want %v", ids, want)
	}
}

func TestStore_ListFavorites(t *testing.T) {
	f := &fakeRest{bodies: map[string]string{
		"favorites": `[{"plant_id":"p1"},{"plant_id":"p2"}]`,
	}}
	s := newTestStore(t, f)

	got, err := s.ListFavorites(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListFavorites: %v", err)
	}
	if want := []string{"p1", "p2"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ListFavorites() = %v, want %v", got, want)
	}
	if q := f.last().URL.Query().Get("user_id"); q != "eq.u1" {
		t.Errorf("user_id filter = %q, want eq.u1", q)
	}
}

func TestStore_WriteFavorites(t *testing.T) {
	f := &fakeRest{}
	s := newTestStore(t, f)
	ctx := context.Background()

	if err := s.UpsertFavorite(ctx, "u1", "p1"); err != nil {
		t.Fatalf("UpsertFavorite: %v", err)
	}
	if m := f.last().Method; m != http.MethodPost {
		t.Errorf("upsert method = %s, want POST", m)
	}

	if err := s.DeleteFavorite(ctx, "u1", "p1"); err != nil {
		t.Fatalf("DeleteFavorite: %v", err)
	}
	req := f.last()
	if req.Method != http.MethodDelete {
		t.Errorf("delete method = %s, want DELETE", req.Method)
	}
	if q := req.URL.Query().Get("plant_id"); q != "eq.p1" {
		t.Errorf("plant_id filter = %q, want eq.p1", q)
	}
}

func TestStore_ErrorStatus(t *testing.T) {
	f := &fakeRest{status: http.StatusServiceUnavailable}
	s := newTestStore(t, f)

	if err := s.UpsertFavorite(context.Background(), "u1", "p1"); err == nil {
		t.Error("expected error from 503")
	}
	if _, err := s.ListFavorites(context.Background(), "u1"); err == nil {
		t.Error("expected error from 503")
	}
}

func TestStore_CanceledContextSkipsCall(t *testing.T) {
	f := &fakeRest{}
	s := newTestStore(t, f)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.UpsertFavorite(ctx, "u1", "p1"); !errors.Is(err, context.Canceled) {
		t.Errorf("UpsertFavorite = %v, want context.Canceled", err)
	}
	if len(f.requests) != 0 {
		t.Errorf("made %d requests with canceled context", len(f.requests))
	}
}

func TestStore_GetProfile(t *testing.T) {
	f := &fakeRest{bodies: map[string]string{
		"profiles": `[{"id":"u1","email":"u1@example.com","full_name":"Uma","location":"Queens, NY","favorite_plant_type":null,"avatar_url":null}]`,
	}}
	s := newTestStore(t, f)

	p, err := s.GetProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p.FullName != "Uma" || p.Location != "Queens, NY" || p.AvatarURL != "" {
		t.Errorf("GetProfile() = %+v", p)
	}
}

func TestStore_GetProfileNotFound(t *testing.T) {
	f := &fakeRest{bodies: map[string]string{"profiles": `[]`}}
	s := newTestStore(t, f)

	if _, err := s.GetProfile(context.Background(), "missing"); !errors.Is(err, profiles.ErrNotFound) {
		t.Errorf("GetProfile = %v, want ErrNotFound", err)
	}
}
