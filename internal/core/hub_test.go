package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vovakirdan/chatql-server/internal/store"
)

func TestHubDeliversToChannelAndWildcard(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	pubg := NewSubscriber("a", "pubg")
	apex := NewSubscriber("b", "Apex")
	all := NewSubscriber("c", "")

	for _, s := range []*Subscriber{pubg, apex, all} {
		if err := hub.Subscribe(s); err != nil {
			t.Fatalf("subscribe %s: %v", s.ID, err)
		}
	}

	hub.Publish(&Event{
		Kind:    EventMessageAdded,
		Channel: "Pubg",
		Message: store.Message{ID: "m1", Content: "hi"},
	})

	// Channel filters ignore case.
	ev := mustEvent(t, pubg.Events, EventMessageAdded)
	if ev.Message.ID != "m1" || ev.Channel != "Pubg" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	ev = mustEvent(t, all.Events, EventMessageAdded)
	if ev.Message.Content != "hi" {
		t.Fatalf("unexpected wildcard event: %+v", ev)
	}
	mustNoEvent(t, apex.Events)
}

func TestHubUnsubscribeClosesEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	s := NewSubscriber("a", "Pubg")
	if err := hub.Subscribe(s); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	hub.Unsubscribe(s)

	select {
	case _, ok := <-s.Events:
		if ok {
			t.Fatal("expected closed events channel")
		}
	case <-time.After(time.Second):
		t.Fatal("events channel was not closed")
	}

	// A second unsubscribe is a no-op.
	hub.Unsubscribe(s)
}

func TestHubStopClosesSubscribers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	hub := NewHub(nil)
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	s := NewSubscriber("a", "")
	if err := hub.Subscribe(s); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	cancel()
	<-stopped

	if _, ok := <-s.Events; ok {
		t.Fatal("expected closed events channel after stop")
	}
	if err := hub.Subscribe(NewSubscriber("b", "")); !errors.Is(err, ErrHubStopped) {
		t.Fatalf("expected ErrHubStopped, got %v", err)
	}

	// Neither call may block once the hub is gone.
	hub.Publish(&Event{Kind: EventMessageAdded, Channel: "Pubg"})
	hub.Unsubscribe(s)
}

func TestHubDropsForSlowSubscriber(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	hub := NewHub(nil)
	go hub.Run(ctx)

	slow := NewSubscriber("slow", "Pubg")
	fast := NewSubscriber("fast", "Pubg")
	_ = hub.Subscribe(slow)
	_ = hub.Subscribe(fast)

	total := cap(slow.Events) + 5
	received := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range fast.Events {
			received++
			if received == total {
				return
			}
		}
	}()

	for i := 0; i < total; i++ {
		hub.Publish(&Event{Kind: EventMessageAdded, Channel: "Pubg"})
		// Let the fast reader keep up.
		time.Sleep(time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("fast subscriber received %d of %d events", received, total)
	}
	if len(slow.Events) != cap(slow.Events) {
		t.Fatalf("expected slow buffer to be full, got %d", len(slow.Events))
	}
}
