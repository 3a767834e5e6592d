// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

// Package events publishes swipe decisions on an in-process Watermill
// pub/sub so consumers (metrics today) stay decoupled from the session.
// Publishing never blocks a swipe: a failed publish is logged and dropped.
package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/swipe"
)

// TopicSwipe carries swipe.Event payloads.
const TopicSwipe = "swipe.decisions"

// Bus is the process-local event bus.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger zerolog.Logger
}

// NewBus creates a bus whose subscribers buffer up to buffer messages.
func NewBus(buffer int64) *Bus {
	logger := logging.WithComponent("events")
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: buffer},
			NewWatermillLogger(logger),
		),
		logger: logger,
	}
}

// ObserveSwipe publishes e. It satisfies swipe.Observer.
func (b *Bus) ObserveSwipe(e swipe.Event) {
	if err := b.Publish(e); err != nil {
		b.logger.Warn().Err(err).Str("kind", string(e.Kind)).Msg("Dropping swipe event")
	}
}

// Publish encodes e and publishes it on TopicSwipe.
func (b *Bus) Publish(e swipe.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode swipe event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("kind", string(e.Kind))
	if err := b.pubsub.Publish(TopicSwipe, msg); err != nil {
		return fmt.Errorf("publish swipe event: %w", err)
	}
	return nil
}

// Subscribe returns decoded swipe events until ctx ends. Messages are
// acked once delivered. Undecodable ones are logged, acked and skipped so
// they are never redelivered.
func (b *Bus) Subscribe(ctx context.Context) (<-chan swipe.Event, error) {
	msgs, err := b.pubsub.Subscribe(ctx, TopicSwipe)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", TopicSwipe, err)
	}

	out := make(chan swipe.Event)
	go func() {
		defer close(out)
		for msg := range msgs {
			var e swipe.Event
			if err := json.Unmarshal(msg.Payload, &e); err != nil {
				b.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Skipping undecodable swipe event")
				msg.Ack()
				continue
			}
			select {
			case out <- e:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out, nil
}

// Close stops delivery to all subscribers.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
