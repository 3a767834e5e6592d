// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package wal

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/verdure/internal/favorites"
	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/metrics"
)

const maxBackoff = 5 * time.Minute

// ReplayStats summarizes one replay pass.
type ReplayStats struct {
	Applied    int
	Failed     int
	Skipped    int
	Superseded int
	Abandoned  int
}

// Replayer applies journaled intents to the favorites store. It runs once
// on start to recover writes left over from a previous process, then on
// every ReplayInterval.
type Replayer struct {
	journal *Journal
	store   favorites.Store
	config  Config
	limiter *rate.Limiter
	logger  zerolog.Logger
	now     func() time.Time
}

// NewReplayer creates a replayer writing to store. store must not be the
// JournaledStore wrapping the same journal.
func NewReplayer(journal *Journal, store favorites.Store) *Replayer {
	cfg := journal.config
	burst := int(math.Ceil(cfg.ReplayRate))
	if burst < 1 {
		burst = 1
	}
	return &Replayer{
		journal: journal,
		store:   store,
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.ReplayRate), burst),
		logger:  logging.WithComponent("journal-replay"),
		now:     time.Now,
	}
}

// Serve runs the replay loop until ctx ends. It implements suture.Service.
func (r *Replayer) Serve(ctx context.Context) error {
	r.logger.Info().Dur("interval", r.config.ReplayInterval).Msg("Journal replay started")

	r.pass(ctx)

	ticker := time.NewTicker(r.config.ReplayInterval)
	defer ticker.Stop()

	var gc <-chan time.Time
	if r.config.GCInterval > 0 {
		gcTicker := time.NewTicker(r.config.GCInterval)
		defer gcTicker.Stop()
		gc = gcTicker.C
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info().Msg("Journal replay stopped")
			return ctx.Err()
		case <-ticker.C:
			r.pass(ctx)
		case <-gc:
			if err := r.journal.RunGC(); err != nil {
				r.logger.Warn().Err(err).Msg("Journal GC failed")
			}
		}
	}
}

func (r *Replayer) String() string { return "journal-replay" }

func (r *Replayer) pass(ctx context.Context) {
	stats, err := r.ReplayOnce(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error().Err(err).Msg("Journal replay pass failed")
		}
		return
	}
	if stats.Applied+stats.Failed+stats.Abandoned > 0 {
		r.logger.Info().
			Int("applied", stats.Applied).
			Int("failed", stats.Failed).
			Int("abandoned", stats.Abandoned).
			Int("superseded", stats.Superseded).
			Int("waiting", stats.Skipped).
			Msg("Journal replay complete")
	}
}

// ReplayOnce makes a single pass over the journal.
func (r *Replayer) ReplayOnce(ctx context.Context) (ReplayStats, error) {
	var stats ReplayStats

	entries, err := r.journal.Pending(ctx)
	if err != nil {
		return stats, err
	}
	defer r.journal.syncPendingGauge()

	for _, entry := range entries {
		if !r.readyForRetry(entry) {
			stats.Skipped++
			continue
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return stats, err
		}
		switch r.replayEntry(ctx, entry) {
		case replayApplied:
			stats.Applied++
		case replayFailed:
			stats.Failed++
		case replaySuperseded:
			stats.Superseded++
		case replayAbandoned:
			stats.Abandoned++
		}
	}
	return stats, nil
}

type replayResult int

const (
	replayApplied replayResult = iota
	replayFailed
	replaySuperseded
	replayAbandoned
)

func (r *Replayer) replayEntry(ctx context.Context, entry *Entry) replayResult {
	unlock := r.journal.lockPair(entry.UserID, entry.ItemID)
	defer unlock()

	// A live write may have resolved or replaced the entry since the scan.
	current, err := r.journal.Get(ctx, entry.UserID, entry.ItemID)
	if err != nil || current == nil || current.Seq != entry.Seq {
		return replaySuperseded
	}

	log := r.logger.With().
		Str("user_id", entry.UserID).
		Str("plant_id", entry.ItemID).
		Str("op", entry.Op).
		Logger()

	op, err := current.Operation()
	if err != nil || current.Attempts >= r.config.MaxAttempts {
		log.Warn().Err(err).Int("attempts", current.Attempts).Msg("Abandoning journaled favorite write")
		if discardErr := r.journal.Discard(ctx, entry.UserID, entry.ItemID); discardErr != nil {
			log.Error().Err(discardErr).Msg("Failed to discard journal entry")
		}
		metrics.JournalReplays.WithLabelValues("abandoned").Inc()
		return replayAbandoned
	}

	if err := op.Apply(ctx, r.store, entry.UserID, entry.ItemID); err != nil {
		log.Debug().Err(err).Int("attempt", current.Attempts+1).Msg("Journal replay attempt failed")
		if updateErr := r.journal.RecordAttempt(ctx, current, err.Error()); updateErr != nil {
			log.Error().Err(updateErr).Msg("Failed to record journal attempt")
		}
		metrics.JournalReplays.WithLabelValues("error").Inc()
		return replayFailed
	}

	if err := r.journal.Resolve(ctx, entry.UserID, entry.ItemID, current.Seq); err != nil {
		log.Error().Err(err).Msg("Failed to resolve replayed entry")
	}
	metrics.JournalReplays.WithLabelValues("ok").Inc()
	return replayApplied
}

func (r *Replayer) readyForRetry(entry *Entry) bool {
	if entry.LastAttemptAt.IsZero() {
		return true
	}
	return r.now().Sub(entry.LastAttemptAt) >= r.backoff(entry.Attempts)
}

// backoff is RetryBackoff * 2^(attempts-1), capped at five minutes.
func (r *Replayer) backoff(attempts int) time.Duration {
	if attempts <= 0 {
		return 0
	}
	if attempts > 30 {
		return maxBackoff
	}
	d := time.Duration(float64(r.config.RetryBackoff) * math.Pow(2, float64(attempts-1)))
	if d < 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}
