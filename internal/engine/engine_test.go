// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package engine

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/favorites"
	"github.com/tomtom215/verdure/internal/identity"
	"github.com/tomtom215/verdure/internal/store/memory"
	"github.com/tomtom215/verdure/internal/swipe"
)

// Seed catalog order: 1 (owner 2), 2 (owner 3), 3 (owner 4), 4 (owner 5).
//   1: indoor statement bright-light
//   2: beginner low-maintenance air-purifying
//   3: trendy statement climbing
//   4: propagation beginner trailing

func newTestEngine(t *testing.T, store *memory.Store, opts ...func(*Options)) *Engine {
	t.Helper()
	o := DefaultOptions()
	o.Ledger.WriteTimeout = time.Second
	for _, fn := range opts {
		fn(&o)
	}
	e := New(store, store, o)
	t.Cleanup(func() { _ = e.Shutdown(context.Background()) })
	return e
}

func ids(items []catalog.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func flushUser(t *testing.T, e *Engine, userID string) {
	t.Helper()
	ws, ok := e.workspaces.Get(userID)
	if !ok {
		t.Fatalf("no workspace for %s", userID)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := ws.ledger.Flush(ctx); err != nil {
		t.Fatalf("Flush: %v", err)
	}
}

func TestEngine_RequiresUser(t *testing.T) {
	e := newTestEngine(t, memory.NewSeeded())
	ctx := context.Background()

	checks := map[string]error{}
	_, checks["GetRecommendedPlants"] = e.GetRecommendedPlants(ctx, "")
	_, checks["LikePlant"] = e.LikePlant(ctx, "", "1")
	_, checks["UnlikePlant"] = e.UnlikePlant(ctx, "", "1")
	_, checks["Favorites"] = e.Favorites(ctx, "")
	_, checks["StartSession"] = e.StartSession(ctx, "")
	_, checks["Session"] = e.Session("")
	_, checks["Warnings"] = e.Warnings("")
	checks["Logout"] = e.Logout("")

	for op, err := range checks {
		if !errors.Is(err, identity.ErrAuthRequired) {
			t.Errorf("%s(\"\") error = %v, want ErrAuthRequired", op, err)
		}
	}
}

func TestEngine_RecommendWithoutWorkspaceUsesStore(t *testing.T) {
	store := memory.NewSeeded()
	_ = store.UpsertFavorite(context.Background(), "u1", "2")
	e := newTestEngine(t, store)

	got, err := e.GetRecommendedPlants(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetRecommendedPlants: %v", err)
	}
	// Liking 2 boosts 4 (shares "beginner"); 1 and 3 tie at zero.
	if want := []string{"4", "1", "3"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("ranked = %v, want %v", ids(got), want)
	}
	if e.ActiveUsers() != 0 {
		t.Error("recommendations alone must not create a workspace")
	}
}

func TestEngine_RecommendExcludesOwned(t *testing.T) {
	e := newTestEngine(t, memory.NewSeeded())
	got, err := e.GetRecommendedPlants(context.Background(), "2")
	if err != nil {
		t.Fatalf("GetRecommendedPlants: %v", err)
	}
	for _, it := range got {
		if it.OwnerID == "2" {
			t.Errorf("owned plant %s recommended", it.ID)
		}
	}
}

func TestEngine_LikeUnlike(t *testing.T) {
	store := memory.NewSeeded()
	e := newTestEngine(t, store)
	ctx := context.Background()

	changed, err := e.LikePlant(ctx, "u1", "1")
	if err != nil || !changed {
		t.Fatalf("LikePlant = %v, %v", changed, err)
	}
	if changed, _ := e.LikePlant(ctx, "u1", "1"); changed {
		t.Error("second like should not change membership")
	}

	recs, _ := e.GetRecommendedPlants(ctx, "u1")
	if want := []string{"3", "2", "4"}; !reflect.DeepEqual(ids(recs), want) {
		t.Errorf("after liking 1 ranked = %v, want %v", ids(recs), want)
	}

	flushUser(t, e, "u1")
	persisted, _ := store.ListFavorites(ctx, "u1")
	if !reflect.DeepEqual(persisted, []string{"1"}) {
		t.Errorf("persisted = %v, want [1]", persisted)
	}

	if changed, _ := e.UnlikePlant(ctx, "u1", "1"); !changed {
		t.Error("unlike should change membership")
	}
	if changed, err := e.UnlikePlant(ctx, "u1", "1"); changed || err != nil {
		t.Errorf("second unlike = %v, %v, want no-op", changed, err)
	}
	flushUser(t, e, "u1")
	persisted, _ = store.ListFavorites(ctx, "u1")
	if len(persisted) != 0 {
		t.Errorf("persisted after unlike = %v, want empty", persisted)
	}
}

func TestEngine_LikeUnknownPlant(t *testing.T) {
	e := newTestEngine(t, memory.NewSeeded())
	if _, err := e.LikePlant(context.Background(), "u1", "nope"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("LikePlant(nope) = %v, want ErrNotFound", err)
	}
}

func TestEngine_FavoritesInCatalogOrder(t *testing.T) {
	store := memory.NewSeeded()
	_ = store.UpsertFavorite(context.Background(), "u1", "gone")
	e := newTestEngine(t, store)
	ctx := context.Background()

	_, _ = e.LikePlant(ctx, "u1", "4")
	_, _ = e.LikePlant(ctx, "u1", "2")

	got, err := e.Favorites(ctx, "u1")
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if want := []string{"2", "4"}; !reflect.DeepEqual(ids(got), want) {
		t.Errorf("Favorites() = %v, want %v", ids(got), want)
	}
	if ok, _ := e.IsFavorite(ctx, "u1", "gone"); !ok {
		t.Error("delisted favorite should stay in the ledger")
	}
}

func TestEngine_SwipeSession(t *testing.T) {
	var mu sync.Mutex
	var events []swipe.EventKind
	observer := swipe.ObserverFunc(func(ev swipe.Event) {
		mu.Lock()
		events = append(events, ev.Kind)
		mu.Unlock()
	})

	e := newTestEngine(t, memory.NewSeeded(), func(o *Options) { o.Observer = observer })
	ctx := context.Background()

	if _, err := e.Session("u1"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Session before start = %v, want ErrNoSession", err)
	}
	if _, _, err := e.Swipe("u1", swipe.EventLike); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Swipe before start = %v, want ErrNoSession", err)
	}

	snap, err := e.StartSession(ctx, "u1")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if snap.Total != 4 || snap.Position != 0 || snap.Current == nil || snap.Current.ID != "1" {
		t.Fatalf("initial snapshot = %+v", snap)
	}

	applied, snap, err := e.Swipe("u1", swipe.EventLike)
	if err != nil || !applied || snap.Position != 1 {
		t.Fatalf("like = %v, %+v, %v", applied, snap, err)
	}
	if ok, _ := e.IsFavorite(ctx, "u1", "1"); !ok {
		t.Error("like should add to favorites")
	}

	applied, snap, _ = e.Swipe("u1", swipe.EventUndo)
	if !applied || snap.Position != 0 {
		t.Fatalf("undo = %v, %+v", applied, snap)
	}
	if ok, _ := e.IsFavorite(ctx, "u1", "1"); ok {
		t.Error("undo should remove the like")
	}

	if applied, _, _ := e.Swipe("u1", swipe.EventUndo); applied {
		t.Error("undo at position 0 must not apply")
	}

	for i := 0; i < 4; i++ {
		if _, _, err := e.Swipe("u1", swipe.EventPass); err != nil {
			t.Fatalf("pass %d: %v", i, err)
		}
	}
	applied, snap, _ = e.Swipe("u1", swipe.EventPass)
	if applied || snap.StateName != "exhausted" {
		t.Errorf("pass when exhausted = %v, %+v", applied, snap)
	}

	if _, _, err := e.Swipe("u1", swipe.EventKind("shuffle")); err == nil {
		t.Error("unknown action should error")
	}

	mu.Lock()
	defer mu.Unlock()
	want := []swipe.EventKind{swipe.EventLike, swipe.EventUndo, swipe.EventPass, swipe.EventPass, swipe.EventPass, swipe.EventPass}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("observed %v, want %v", events, want)
	}
}

func TestEngine_StartSessionReplacesPrior(t *testing.T) {
	e := newTestEngine(t, memory.NewSeeded())
	ctx := context.Background()

	_, _ = e.StartSession(ctx, "u1")
	_, _, _ = e.Swipe("u1", swipe.EventLike)

	snap, err := e.StartSession(ctx, "u1")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if snap.Position != 0 || snap.Total != 3 {
		t.Errorf("new session = %+v, want 3 candidates excluding the liked plant", snap)
	}
}

func TestEngine_LogoutTearsDown(t *testing.T) {
	store := memory.NewSeeded()
	e := newTestEngine(t, store)
	ctx := context.Background()

	_, _ = e.LikePlant(ctx, "u1", "3")
	flushUser(t, e, "u1")
	_, _ = e.StartSession(ctx, "u1")

	if err := e.Logout("u1"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if e.ActiveUsers() != 0 {
		t.Errorf("ActiveUsers() = %d after logout", e.ActiveUsers())
	}
	if _, err := e.Session("u1"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Session after logout = %v, want ErrNoSession", err)
	}

	favs, _ := e.Favorites(ctx, "u1")
	if want := []string{"3"}; !reflect.DeepEqual(ids(favs), want) {
		t.Errorf("favorites reloaded after logout = %v, want %v", ids(favs), want)
	}
}

func TestEngine_EvictsLeastRecentUser(t *testing.T) {
	e := newTestEngine(t, memory.NewSeeded(), func(o *Options) { o.MaxUsers = 1 })
	ctx := context.Background()

	_, _ = e.StartSession(ctx, "u1")
	_, _ = e.StartSession(ctx, "u2")

	if _, err := e.Session("u1"); !errors.Is(err, ErrNoSession) {
		t.Errorf("u1 session should be evicted, got %v", err)
	}
	if _, err := e.Session("u2"); err != nil {
		t.Errorf("u2 session: %v", err)
	}
}

type failingStore struct {
	*memory.Store
}

func (failingStore) UpsertFavorite(context.Context, string, string) error {
	return errors.New("store unavailable")
}

func TestEngine_WarningsDrain(t *testing.T) {
	seeded := memory.NewSeeded()
	o := DefaultOptions()
	e := New(seeded, failingStore{seeded}, o)
	defer e.Shutdown(context.Background())
	ctx := context.Background()

	if w, err := e.Warnings("u1"); err != nil || len(w) != 0 {
		t.Fatalf("Warnings without workspace = %v, %v", w, err)
	}

	if changed, err := e.LikePlant(ctx, "u1", "1"); err != nil || !changed {
		t.Fatalf("LikePlant = %v, %v", changed, err)
	}
	flushUser(t, e, "u1")

	warnings, err := e.Warnings("u1")
	if err != nil {
		t.Fatalf("Warnings: %v", err)
	}
	if len(warnings) != 1 || warnings[0].Op != favorites.OpUpsert || warnings[0].ItemID != "1" {
		t.Fatalf("Warnings() = %+v, want one upsert warning for 1", warnings)
	}
	if ok, _ := e.IsFavorite(ctx, "u1", "1"); !ok {
		t.Error("failed write must not roll back the like")
	}
	if again, _ := e.Warnings("u1"); len(again) != 0 {
		t.Errorf("second drain = %v, want empty", again)
	}
}

// flakyLists fails the next failLists ListFavorites calls and honors ctx.
type flakyLists struct {
	*memory.Store

	mu        sync.Mutex
	failLists int
	lists     int
}

func (f *flakyLists) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.lists++
	fail := f.failLists > 0
	if fail {
		f.failLists--
	}
	f.mu.Unlock()
	if fail {
		return nil, errors.New("store unavailable")
	}
	return f.Store.ListFavorites(ctx, userID)
}

func (f *flakyLists) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

func TestEngine_ReloadsAfterDegradedLoad(t *testing.T) {
	seeded := memory.NewSeeded()
	ctx := context.Background()
	if err := seeded.UpsertFavorite(ctx, "me", "1"); err != nil {
		t.Fatalf("UpsertFavorite: %v", err)
	}
	store := &flakyLists{Store: seeded, failLists: 1}
	o := DefaultOptions()
	o.LoadRetryInterval = 0
	e := New(seeded, store, o)
	defer e.Shutdown(context.Background())

	favs, err := e.Favorites(ctx, "me")
	if err != nil {
		t.Fatalf("Favorites: %v", err)
	}
	if len(favs) != 0 {
		t.Fatalf("degraded favorites = %v, want empty", ids(favs))
	}

	favs, _ = e.Favorites(ctx, "me")
	if want := []string{"1"}; !reflect.DeepEqual(ids(favs), want) {
		t.Errorf("favorites after store recovered = %v, want %v", ids(favs), want)
	}

	snap, err := e.StartSession(ctx, "me")
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if snap.Total != 3 || snap.Current == nil || snap.Current.ID == "1" {
		t.Errorf("session = %+v, want 3 candidates without favorited plant 1", snap)
	}

	calls := store.listCalls()
	_, _ = e.Favorites(ctx, "me")
	if store.listCalls() != calls {
		t.Error("a loaded ledger should not hit the store again")
	}
}

func TestEngine_DegradedLoadRetryInterval(t *testing.T) {
	seeded := memory.NewSeeded()
	store := &flakyLists{Store: seeded, failLists: 1}
	o := DefaultOptions()
	o.LoadRetryInterval = time.Hour
	e := New(seeded, store, o)
	defer e.Shutdown(context.Background())
	ctx := context.Background()

	_, _ = e.IsFavorite(ctx, "u1", "1")
	_, _ = e.IsFavorite(ctx, "u1", "1")
	if n := store.listCalls(); n != 1 {
		t.Errorf("ListFavorites calls = %d, want 1 inside the retry interval", n)
	}
}

func TestEngine_LoadIgnoresCancelledRequest(t *testing.T) {
	seeded := memory.NewSeeded()
	if err := seeded.UpsertFavorite(context.Background(), "u9", "2"); err != nil {
		t.Fatalf("UpsertFavorite: %v", err)
	}
	e := New(seeded, &flakyLists{Store: seeded}, DefaultOptions())
	defer e.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ok, err := e.IsFavorite(ctx, "u9", "2")
	if err != nil {
		t.Fatalf("IsFavorite: %v", err)
	}
	if !ok {
		t.Error("a cancelled first request must not leave the persisted favorite missing")
	}
}

func TestEngine_ClosedLedgerIsNotSilent(t *testing.T) {
	e := newTestEngine(t, memory.NewSeeded())
	ctx := context.Background()

	if _, err := e.StartSession(ctx, "u1"); err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	session, err := e.Session("u1")
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	ws, _ := e.workspaces.Get("u1")
	ws.ledger.Close()

	if _, _, err := e.Swipe("u1", swipe.EventLike); !errors.Is(err, ErrNoSession) {
		t.Errorf("Swipe on closed ledger = %v, want ErrNoSession", err)
	}
	if session.Position() != 0 {
		t.Errorf("Position() = %d, a lost like must not advance the session", session.Position())
	}
	if _, err := e.LikePlant(ctx, "u1", "3"); !errors.Is(err, favorites.ErrLedgerClosed) {
		t.Errorf("LikePlant on closed ledger = %v, want ErrLedgerClosed", err)
	}
}

func TestJanitor_StopsOnCancel(t *testing.T) {
	e := newTestEngine(t, memory.NewSeeded())
	j := NewJanitor(e, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- j.Serve(ctx) }()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
