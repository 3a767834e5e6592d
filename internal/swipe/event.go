// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package swipe

import "time"

// EventKind names an applied transition.
type EventKind string

const (
	EventLike    EventKind = "like"
	EventPass    EventKind = "pass"
	EventUndo    EventKind = "undo"
	EventRestart EventKind = "restart"
)

// Event describes an applied transition. Position is the cursor after it.
type Event struct {
	UserID   string    `json:"user_id"`
	Kind     EventKind `json:"kind"`
	ItemID   string    `json:"plant_id,omitempty"`
	Position int       `json:"position"`
	Total    int       `json:"total"`
	At       time.Time `json:"at"`
}

// Observer is notified after each applied transition. It runs before the
// transition guard is released, so it may read the session but any action
// it attempts returns ErrBusy.
type Observer interface {
	ObserveSwipe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// ObserveSwipe calls f(e).
func (f ObserverFunc) ObserveSwipe(e Event) { f(e) }
