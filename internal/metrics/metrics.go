// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog

	CatalogRowsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdure_catalog_rows_skipped_total",
			Help: "Catalog rows rejected at ingestion",
		},
		[]string{"reason"}, // "decode", "invalid", "duplicate"
	)

	CatalogCacheResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdure_catalog_cache_total",
			Help: "Catalog snapshot cache lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	// Ranking

	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "verdure_rank_duration_seconds",
			Help:    "Time to rank a candidate sequence",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	RankCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "verdure_rank_candidates",
			Help:    "Number of candidates produced per ranking",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	// Swipe

	SwipeDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdure_swipe_decisions_total",
			Help: "Applied swipe session transitions",
		},
		[]string{"action"}, // "like", "pass", "undo", "restart"
	)

	SwipeSessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verdure_swipe_sessions_started_total",
			Help: "Swipe sessions started",
		},
	)

	SwipeRejectedBusy = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verdure_swipe_rejected_busy_total",
			Help: "Swipe actions rejected because a transition was in progress",
		},
	)

	// Favorites ledger

	LedgerStoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdure_ledger_store_writes_total",
			Help: "Favorites store writes issued by the ledger",
		},
		[]string{"op", "result"}, // op: "upsert", "delete"; result: "ok", "error"
	)

	LedgerStoreWriteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verdure_ledger_store_write_duration_seconds",
			Help:    "Favorites store write latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	LedgerWritesCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verdure_ledger_writes_coalesced_total",
			Help: "Write intents superseded before reaching the store",
		},
	)

	LedgerWarningsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verdure_ledger_warnings_dropped_total",
			Help: "Store warnings dropped because the warning buffer was full",
		},
	)

	LedgerLoadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "verdure_ledger_load_failures_total",
			Help: "Favorites loads that fell back to an empty set",
		},
	)

	ActiveWorkspaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "verdure_active_workspaces",
			Help: "Users with a live ledger in memory",
		},
	)

	// Circuit breaker

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "verdure_circuit_breaker_state",
			Help: "Breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdure_circuit_breaker_requests_total",
			Help: "Calls through a circuit breaker by outcome",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdure_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Journal

	JournalPending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "verdure_journal_pending_entries",
			Help: "Favorite writes waiting in the journal",
		},
	)

	JournalReplays = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdure_journal_replays_total",
			Help: "Journal entries replayed against the favorites store",
		},
		[]string{"result"}, // "ok", "error", "abandoned"
	)

	// HTTP

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "verdure_api_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "verdure_api_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordStoreWrite records one ledger write to the favorites store.
func RecordStoreWrite(op string, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	LedgerStoreWrites.WithLabelValues(op, result).Inc()
	LedgerStoreWriteDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordRank records one ranking pass.
func RecordRank(duration time.Duration, candidates int) {
	RankDuration.Observe(duration.Seconds())
	RankCandidates.Observe(float64(candidates))
}

// RecordAPIRequest records an HTTP request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
