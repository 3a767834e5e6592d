// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package swipe implements the card-swipe session: a cursor over a fixed
// candidate sequence that moves forward on like or pass and back one step
// on undo.
//
// A session is Presenting while the cursor is inside the sequence and
// Exhausted once it reaches the end. Like calls the favorites ledger; pass
// does not. Undo reverses the previous decision, unliking the plant when
// that decision was the like that added it. Undo is not available once the
// session is Exhausted; Restart returns to the first card without
// re-ranking.
//
// Invalid transitions are no-ops reported as applied == false. A transition
// attempted while another one is still running returns ErrBusy.
package swipe

import (
	"errors"
	"sync"
	"time"

	"github.com/tomtom215/verdure/internal/catalog"
	"github.com/tomtom215/verdure/internal/identity"
)

// ErrBusy rejects an action that overlaps another transition.
var ErrBusy = errors.New("swipe transition in progress")

// State of a session.
type State int

const (
	Presenting State = iota
	Exhausted
)

func (s State) String() string {
	if s == Exhausted {
		return "exhausted"
	}
	return "presenting"
}

// Action is the kind of the most recent decision.
type Action int

const (
	ActionNone Action = iota
	ActionLike
	ActionPass
)

func (a Action) String() string {
	switch a {
	case ActionLike:
		return "liked"
	case ActionPass:
		return "passed"
	default:
		return "none"
	}
}

// Ledger is the part of favorites.Ledger a session drives. TryLike fails
// once the ledger is closed; the session then stays on the same card.
type Ledger interface {
	TryLike(itemID string) (bool, error)
	Unlike(itemID string) bool
}

// decision is one applied like or pass. added records whether the like
// changed ledger membership, so undo only removes what this session added.
type decision struct {
	action Action
	itemID string
	added  bool
}

// Session is one traversal of a ranked candidate sequence.
type Session struct {
	userID     string
	candidates []catalog.Item
	ledger     Ledger
	observer   Observer
	now        func() time.Time

	busy sync.Mutex // held for the whole transition, acquired with TryLock

	mu      sync.RWMutex
	cursor  int
	history []decision
	last    Action
}

// Option configures a Session.
type Option func(*Session)

// WithObserver receives every applied transition.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observer = o }
}

// NewSession starts at the first candidate, or Exhausted when there are
// none. The candidate slice is copied.
func NewSession(userID string, candidates []catalog.Item, ledger Ledger, opts ...Option) (*Session, error) {
	if err := identity.Require(userID); err != nil {
		return nil, err
	}
	s := &Session{
		userID:     userID,
		candidates: append([]catalog.Item(nil), candidates...),
		ledger:     ledger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// UserID returns the session owner.
func (s *Session) UserID() string { return s.userID }

// Total is the number of candidates.
func (s *Session) Total() int { return len(s.candidates) }

// Position is the number of decisions made, which is also the index of the
// current card.
func (s *Session) Position() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cursor
}

// State reports Presenting or Exhausted.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	if s.cursor >= len(s.candidates) {
		return Exhausted
	}
	return Presenting
}

// LastAction is for transient UI feedback. Undo clears it.
func (s *Session) LastAction() Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Current returns the card being presented; ok is false when Exhausted.
func (s *Session) Current() (item catalog.Item, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stateLocked() == Exhausted {
		return catalog.Item{}, false
	}
	return s.candidates[s.cursor], true
}

// Like adds the current card to favorites and advances.
func (s *Session) Like() (bool, error) {
	return s.decide(ActionLike)
}

// Pass advances without touching favorites.
func (s *Session) Pass() (bool, error) {
	return s.decide(ActionPass)
}

func (s *Session) decide(action Action) (bool, error) {
	if !s.busy.TryLock() {
		return false, ErrBusy
	}
	defer s.busy.Unlock()

	s.mu.RLock()
	if s.stateLocked() == Exhausted {
		s.mu.RUnlock()
		return false, nil
	}
	item := s.candidates[s.cursor]
	s.mu.RUnlock()

	d := decision{action: action, itemID: item.ID}
	if action == ActionLike {
		added, err := s.ledger.TryLike(item.ID)
		if err != nil {
			return false, err
		}
		d.added = added
	}

	s.mu.Lock()
	s.history = append(s.history, d)
	s.cursor++
	s.last = action
	pos := s.cursor
	s.mu.Unlock()

	kind := EventPass
	if action == ActionLike {
		kind = EventLike
	}
	s.notify(kind, item.ID, pos)
	return true, nil
}

// Undo steps back one card and reverses that decision. It is a no-op on
// the first card and after the session is Exhausted.
func (s *Session) Undo() (bool, error) {
	if !s.busy.TryLock() {
		return false, ErrBusy
	}
	defer s.busy.Unlock()

	s.mu.RLock()
	if s.cursor == 0 || s.stateLocked() == Exhausted {
		s.mu.RUnlock()
		return false, nil
	}
	d := s.history[len(s.history)-1]
	s.mu.RUnlock()

	if d.action == ActionLike && d.added {
		s.ledger.Unlike(d.itemID)
	}

	s.mu.Lock()
	s.history = s.history[:len(s.history)-1]
	s.cursor--
	s.last = ActionNone
	pos := s.cursor
	s.mu.Unlock()

	s.notify(EventUndo, d.itemID, pos)
	return true, nil
}

// Restart returns to the first card over the same candidates. Favorites
// are left as they are. Returns false when already at a fresh start.
func (s *Session) Restart() (bool, error) {
	if !s.busy.TryLock() {
		return false, ErrBusy
	}
	defer s.busy.Unlock()

	s.mu.Lock()
	if s.cursor == 0 && len(s.history) == 0 && s.last == ActionNone {
		s.mu.Unlock()
		return false, nil
	}
	s.cursor = 0
	s.history = nil
	s.last = ActionNone
	s.mu.Unlock()

	s.notify(EventRestart, "", 0)
	return true, nil
}

// Snapshot is a consistent read of the session for display.
type Snapshot struct {
	State      State         `json:"-"`
	StateName  string        `json:"state"`
	Position   int           `json:"position"`
	Total      int           `json:"total"`
	Current    *catalog.Item `json:"current,omitempty"`
	LastAction string        `json:"last_action"`
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.stateLocked()
	snap := Snapshot{
		State:      st,
		StateName:  st.String(),
		Position:   s.cursor,
		Total:      len(s.candidates),
		LastAction: s.last.String(),
	}
	if st == Presenting {
		item := s.candidates[s.cursor]
		snap.Current = &item
	}
	return snap
}

func (s *Session) notify(kind EventKind, itemID string, position int) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveSwipe(Event{
		UserID:   s.userID,
		Kind:     kind,
		ItemID:   itemID,
		Position: position,
		Total:    len(s.candidates),
		At:       s.now(),
	})
}
