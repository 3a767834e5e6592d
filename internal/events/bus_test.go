// Verdure - Plant Swap Recommendation and Swipe Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/verdure

package events

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/verdure/internal/logging"
	"github.com/tomtom215/verdure/internal/swipe"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := NewBus(16)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	want := []swipe.Event{
		{UserID: "u1", Kind: swipe.EventLike, ItemID: "p1", Position: 1, Total: 3},
		{UserID: "u1", Kind: swipe.EventPass, ItemID: "p2", Position: 2, Total: 3},
		{UserID: "u1", Kind: swipe.EventUndo, ItemID: "p2", Position: 1, Total: 3},
	}
	for _, e := range want {
		bus.ObserveSwipe(e)
	}

	for i, w := range want {
		select {
		case got := <-events:
			if got.Kind != w.Kind || got.ItemID != w.ItemID || got.Position != w.Position {
				t.Errorf("event %d = %+v, want %+v", i, got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestBus_SubscribeSkipsUndecodable(t *testing.T) {
	bus := NewBus(4)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	if err := bus.pubsub.Publish(TopicSwipe, message.NewMessage(watermill.NewUUID(), []byte("not json"))); err != nil {
		t.Fatalf("Publish raw: %v", err)
	}
	bus.ObserveSwipe(swipe.Event{UserID: "u1", Kind: swipe.EventPass, ItemID: "p9", Position: 1, Total: 1})

	select {
	case got := <-events:
		if got.ItemID != "p9" {
			t.Errorf("first delivered event = %+v, want p9", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("undecodable message blocked the subscription")
	}
}

func TestBus_SubscribeClosesOnCancel(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	events, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected closed channel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestBus_PublishWithoutSubscriber(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	if err := bus.Publish(swipe.Event{UserID: "u1", Kind: swipe.EventRestart}); err != nil {
		t.Fatalf("Publish without subscribers: %v", err)
	}
}

func TestBus_PublishAfterClose(t *testing.T) {
	bus := NewBus(1)
	if err := bus.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := bus.Publish(swipe.Event{UserID: "u1", Kind: swipe.EventLike}); err == nil {
		t.Fatal("expected error publishing on closed bus")
	}
}

func TestWatermillLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWatermillLogger(logging.NewTestLogger(&buf))

	l.With(watermill.LogFields{"topic": TopicSwipe}).
		Error("publish failed", errors.New("boom"), watermill.LogFields{"attempt": 2})

	out := buf.String()
	for _, want := range []string{`"topic":"swipe.decisions"`, `"attempt":2`, `"error":"boom"`, `"message":"publish failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %s: %s", want, out)
		}
	}
}
