// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package favorites

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/metrics"
)

// BreakerSettings configures BreakerStore.
type BreakerSettings struct {
	Name string

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval resets failure counts while closed.
	Interval time.Duration

	// Timeout is how long the breaker stays open before trying again.
	Timeout time.Duration

	// MinRequests and FailureRatio decide when to open.
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings returns the default breaker settings.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:         "favorites-store",
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerStore guards a Store with a circuit breaker. While open, calls
// fail fast with gobreaker.ErrOpenState, which the ledger reports as an
// ordinary warning.
type BreakerStore struct {
	store Store
	cb    *gobreaker.CircuitBreaker[[]string]
	name  string
}

// NewBreakerStore wraps store.
func NewBreakerStore(store Store, s BreakerSettings) *BreakerStore {
	logger := logging.WithComponent("breaker").With().Str("breaker", s.Name).Logger()
	metrics.CircuitBreakerState.WithLabelValues(s.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= s.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about store health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &BreakerStore{store: store, cb: cb, name: s.Name}
}

// State returns the current breaker state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) execute(fn func() ([]string, error)) ([]string, error) {
	out, err := b.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
	default:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
	}
	return out, err
}

func (b *BreakerStore) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	return b.execute(func() ([]string, error) {
		return b.store.ListFavorites(ctx, userID)
	})
}

func (b *BreakerStore) UpsertFavorite(ctx context.Context, userID, itemID string) error {
	_, err := b.execute(func() ([]string, error) {
		return nil, b.store.UpsertFavorite(ctx, userID, itemID)
	})
	return err
}

func (b *BreakerStore) DeleteFavorite(ctx context.Context, userID, itemID string) error {
	_, err := b.execute(func() ([]string, error) {
		return nil, b.store.DeleteFavorite(ctx, userID, itemID)
	})
	return err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
