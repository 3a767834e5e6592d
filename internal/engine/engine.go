// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package engine is the per-user entry point to recommendations,
// favorites, and swipe sessions.
//
// Each signed-in user gets a workspace holding their favorites ledger and
// at most one swipe session. Workspaces live in a bounded LRU with an
// idle TTL; eviction and Logout close the ledger without waiting for
// in-flight store writes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/verdure/internal/cache"
	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/favorites"
	"github.com/tomtom215/verdure/internal/identity"
	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/metrics"
	"github.com/tomtom215/verdure/internal/recommend"
	"github.com/tomtom215/verdure/internal/swipe"
)

// ErrNoSession is returned when the user has no swipe session.
var ErrNoSession = errors.New("no active swipe session")

// Options tune the engine.
type Options struct {
	// MaxUsers bounds the number of live workspaces.
	MaxUsers int

	// IdleTTL tears a workspace down after this long without use.
	IdleTTL time.Duration

	// LoadTimeout bounds each favorites load. Zero means no bound.
	LoadTimeout time.Duration

	// LoadRetryInterval is the minimum gap between attempts to reload a
	// ledger whose last load fell back to an empty set.
	LoadRetryInterval time.Duration

	// Ledger is passed to every new favorites ledger.
	Ledger favorites.Options

	// Observer receives every applied swipe transition. Optional.
	Observer swipe.Observer
}

// DefaultOptions returns the default engine options.
func DefaultOptions() Options {
	return Options{
		MaxUsers:          10000,
		IdleTTL:           30 * time.Minute,
		LoadTimeout:       10 * time.Second,
		LoadRetryInterval: 5 * time.Second,
		Ledger:            favorites.DefaultOptions(),
	}
}

type workspace struct {
	ledger *favorites.Ledger

	loadMu      sync.Mutex
	lastAttempt time.Time

	mu      sync.Mutex
	session *swipe.Session
}

// Engine serves every user of the process.
type Engine struct {
	catalog     catalog.Store
	favorites   favorites.Store
	recommender *recommend.Recommender
	opts        Options
	workspaces  *cache.LRU[*workspace]
	logger      zerolog.Logger
}

// New creates an engine. items should already be cached (see
// catalog.NewCachedStore); favs is the store every ledger writes to.
func New(items catalog.Store, favs favorites.Store, opts Options) *Engine {
	e := &Engine{
		catalog:     items,
		favorites:   favs,
		recommender: recommend.NewRecommender(items, favs),
		opts:        opts,
		logger:      logging.WithComponent("engine"),
	}
	e.workspaces = cache.New[*workspace](opts.MaxUsers, opts.IdleTTL, e.evict)
	return e
}

func (e *Engine) evict(userID string, ws *workspace) {
	ws.ledger.Close()
	metrics.ActiveWorkspaces.Dec()
	e.logger.Debug().Str("user_id", userID).Msg("Workspace closed")
}

// workspace returns the user's workspace, creating it on first use and
// loading its ledger until a load reaches the store.
func (e *Engine) workspace(ctx context.Context, userID string) (*workspace, error) {
	if err := identity.Require(userID); err != nil {
		return nil, err
	}

	ws, created, err := e.workspaces.GetOrCreate(userID, func() (*workspace, error) {
		ledger, err := favorites.NewLedger(userID, e.favorites, e.opts.Ledger)
		if err != nil {
			return nil, err
		}
		return &workspace{ledger: ledger}, nil
	})
	if err != nil {
		return nil, err
	}
	if created {
		metrics.ActiveWorkspaces.Inc()
	}

	e.ensureLoaded(ctx, ws)
	return ws, nil
}

// ensureLoaded loads the ledger unless a previous load succeeded. A
// degraded load is retried at most once per LoadRetryInterval. The load is
// detached from the caller so an aborted request cannot leave the ledger
// empty.
func (e *Engine) ensureLoaded(ctx context.Context, ws *workspace) {
	if ws.ledger.Loaded() {
		return
	}
	ws.loadMu.Lock()
	defer ws.loadMu.Unlock()
	if ws.ledger.Loaded() {
		return
	}
	now := time.Now()
	if !ws.lastAttempt.IsZero() && now.Sub(ws.lastAttempt) < e.opts.LoadRetryInterval {
		return
	}
	ws.lastAttempt = now

	loadCtx := context.WithoutCancel(ctx)
	if e.opts.LoadTimeout > 0 {
		var cancel context.CancelFunc
		loadCtx, cancel = context.WithTimeout(loadCtx, e.opts.LoadTimeout)
		defer cancel()
	}
	if err := ws.ledger.Load(loadCtx); err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("Ledger load skipped")
		return
	}
	if !ws.ledger.Loaded() {
		logging.Ctx(ctx).Warn().Dur("retry_after", e.opts.LoadRetryInterval).Msg("Favorites load degraded, will retry")
	}
}

// GetRecommendedPlants ranks the catalog for userID. The live ledger is
// used when the user has a workspace; otherwise favorites are read from
// the store.
func (e *Engine) GetRecommendedPlants(ctx context.Context, userID string) ([]catalog.Item, error) {
	if err := identity.Require(userID); err != nil {
		return nil, err
	}
	if ws, ok := e.workspaces.Get(userID); ok {
		e.ensureLoaded(ctx, ws)
		return e.recommender.Recommend(ctx, userID, ws.ledger.Snapshot())
	}
	return e.recommender.GetRecommendedPlants(ctx, userID)
}

// LikePlant adds itemID to the user's favorites. It reports whether the
// set changed. Unknown plants return catalog.ErrNotFound.
func (e *Engine) LikePlant(ctx context.Context, userID, itemID string) (bool, error) {
	ws, err := e.workspace(ctx, userID)
	if err != nil {
		return false, err
	}
	items, err := e.catalog.ListItems(ctx)
	if err != nil {
		return false, fmt.Errorf("list catalog: %w", err)
	}
	if _, err := catalog.Find(items, itemID); err != nil {
		return false, err
	}
	added, err := ws.ledger.TryLike(itemID)
	if errors.Is(err, favorites.ErrLedgerClosed) {
		// Evicted between lookup and like; a fresh workspace takes it.
		if ws, err = e.workspace(ctx, userID); err != nil {
			return false, err
		}
		added, err = ws.ledger.TryLike(itemID)
	}
	return added, err
}

// UnlikePlant removes itemID from the user's favorites. Removing a plant
// that is not a favorite is a no-op.
func (e *Engine) UnlikePlant(ctx context.Context, userID, itemID string) (bool, error) {
	ws, err := e.workspace(ctx, userID)
	if err != nil {
		return false, err
	}
	return ws.ledger.Unlike(itemID), nil
}

// Favorites returns the liked plants that are still listed, in catalog order.
func (e *Engine) Favorites(ctx context.Context, userID string) ([]catalog.Item, error) {
	ws, err := e.workspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	items, err := e.catalog.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return catalog.Select(items, ws.ledger.Snapshot()), nil
}

// IsFavorite reports whether itemID is in the user's favorites.
func (e *Engine) IsFavorite(ctx context.Context, userID, itemID string) (bool, error) {
	ws, err := e.workspace(ctx, userID)
	if err != nil {
		return false, err
	}
	return ws.ledger.Contains(itemID), nil
}

// StartSession ranks once and replaces any prior session.
func (e *Engine) StartSession(ctx context.Context, userID string) (swipe.Snapshot, error) {
	ws, err := e.workspace(ctx, userID)
	if err != nil {
		return swipe.Snapshot{}, err
	}

	candidates, err := e.recommender.Recommend(ctx, userID, ws.ledger.Snapshot())
	if err != nil {
		return swipe.Snapshot{}, err
	}

	var opts []swipe.Option
	if e.opts.Observer != nil {
		opts = append(opts, swipe.WithObserver(e.opts.Observer))
	}
	session, err := swipe.NewSession(userID, candidates, ws.ledger, opts...)
	if err != nil {
		return swipe.Snapshot{}, err
	}

	ws.mu.Lock()
	ws.session = session
	ws.mu.Unlock()

	metrics.SwipeSessionsStarted.Inc()
	logging.Ctx(ctx).Info().Int("candidates", len(candidates)).Msg("Swipe session started")
	return session.Snapshot(), nil
}

// Session returns the user's current swipe session.
func (e *Engine) Session(userID string) (*swipe.Session, error) {
	if err := identity.Require(userID); err != nil {
		return nil, err
	}
	ws, ok := e.workspaces.Get(userID)
	if !ok {
		return nil, ErrNoSession
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.session == nil {
		return nil, ErrNoSession
	}
	return ws.session, nil
}

// Swipe applies kind to the user's session and returns whether it was
// applied along with the resulting view.
func (e *Engine) Swipe(userID string, kind swipe.EventKind) (bool, swipe.Snapshot, error) {
	session, err := e.Session(userID)
	if err != nil {
		return false, swipe.Snapshot{}, err
	}

	var applied bool
	switch kind {
	case swipe.EventLike:
		applied, err = session.Like()
	case swipe.EventPass:
		applied, err = session.Pass()
	case swipe.EventUndo:
		applied, err = session.Undo()
	case swipe.EventRestart:
		applied, err = session.Restart()
	default:
		return false, swipe.Snapshot{}, fmt.Errorf("unknown swipe action %q", kind)
	}
	if errors.Is(err, swipe.ErrBusy) {
		metrics.SwipeRejectedBusy.Inc()
	}
	if errors.Is(err, favorites.ErrLedgerClosed) {
		// The workspace was evicted while this session was in hand.
		return false, swipe.Snapshot{}, fmt.Errorf("%w: workspace closed", ErrNoSession)
	}
	if err != nil {
		return false, swipe.Snapshot{}, err
	}
	return applied, session.Snapshot(), nil
}

// Warnings drains the user's pending store warnings.
func (e *Engine) Warnings(userID string) ([]favorites.Warning, error) {
	if err := identity.Require(userID); err != nil {
		return nil, err
	}
	ws, ok := e.workspaces.Get(userID)
	if !ok {
		return nil, nil
	}

	var out []favorites.Warning
	for {
		select {
		case w := <-ws.ledger.Warnings():
			out = append(out, w)
		default:
			return out, nil
		}
	}
}

// Logout tears down the user's workspace without waiting for writes.
func (e *Engine) Logout(userID string) error {
	if err := identity.Require(userID); err != nil {
		return err
	}
	if e.workspaces.Remove(userID) {
		e.logger.Info().Str("user_id", userID).Msg("User logged out")
	}
	return nil
}

// ActiveUsers returns the number of live workspaces.
func (e *Engine) ActiveUsers() int {
	return e.workspaces.Len()
}

// Sweep closes idle workspaces and returns how many were closed.
func (e *Engine) Sweep() int {
	return e.workspaces.CleanupExpired()
}

// Shutdown waits for queued favorite writes, then closes every workspace.
func (e *Engine) Shutdown(ctx context.Context) error {
	var errs []error
	for _, ws := range e.workspaces.Values() {
		if err := ws.ledger.Flush(ctx); err != nil {
			errs = append(errs, fmt.Errorf("flush %s: %w", ws.ledger.UserID(), err))
		}
	}
	e.workspaces.Purge()
	return errors.Join(errs...)
}
