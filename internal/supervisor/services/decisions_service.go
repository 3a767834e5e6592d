// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package services

import (
	"context"
	"fmt"

	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/metrics"
	"github.com/tomtom215/verdure/internal/swipe"
)

// DecisionSubscriber delivers applied swipe transitions. The channel is
// closed when ctx ends. Satisfied by *events.Bus.
type DecisionSubscriber interface {
	Subscribe(ctx context.Context) (<-chan swipe.Event, error)
}

// DecisionMetricsService counts swipe decisions by kind.
type DecisionMetricsService struct {
	subscriber DecisionSubscriber
	name       string
}

// NewDecisionMetricsService consumes from subscriber.
func NewDecisionMetricsService(subscriber DecisionSubscriber) *DecisionMetricsService {
	return &DecisionMetricsService{subscriber: subscriber, name: "decision-metrics"}
}

// Serve implements suture.Service.
func (s *DecisionMetricsService) Serve(ctx context.Context) error {
	events, err := s.subscriber.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to swipe decisions: %w", err)
	}
	logger := logging.WithComponent(s.name)
	logger.Debug().Msg("Consuming swipe decisions")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				// Bus closed underneath us; let the supervisor restart.
				return fmt.Errorf("swipe decision stream closed")
			}
			metrics.SwipeDecisions.WithLabelValues(string(ev.Kind)).Inc()
		}
	}
}

// String names the service in supervisor logs.
func (s *DecisionMetricsService) String() string {
	return s.name
}
