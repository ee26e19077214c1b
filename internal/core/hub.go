package core

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// wildcardRoom holds subscribers that want events from every channel.
const wildcardRoom = ""

// Hub fans events out to subscribers. All room state is owned by the
// goroutine running Run; other goroutines talk to it over channels.
type Hub struct {
	register   chan *Subscriber
	unregister chan *Subscriber
	broadcast  chan *Event
	done       chan struct{}

	rooms map[string]*Room
	log   *zerolog.Logger
}

// NewHub creates a new hub instance. A nil logger disables logging.
func NewHub(logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		register:   make(chan *Subscriber),
		unregister: make(chan *Subscriber),
		broadcast:  make(chan *Event, 64),
		done:       make(chan struct{}),
		rooms:      make(map[string]*Room),
		log:        logger,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
// On exit every remaining subscriber's Events channel is closed.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case s := <-h.register:
			h.addSubscriber(s)
		case s := <-h.unregister:
			h.removeSubscriber(s)
		case ev := <-h.broadcast:
			h.dispatch(ev)
		}
	}
}

// Subscribe registers s with the hub.
func (h *Hub) Subscribe(s *Subscriber) error {
	select {
	case h.register <- s:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// Unsubscribe removes s from the hub and closes its Events channel.
func (h *Hub) Unsubscribe(s *Subscriber) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Publish queues an event for delivery. It never waits on subscribers.
func (h *Hub) Publish(ev *Event) {
	select {
	case h.broadcast <- ev:
	case <-h.done:
	}
}

func (h *Hub) addSubscriber(s *Subscriber) {
	key := roomKey(s.Channel)
	room, ok := h.rooms[key]
	if !ok {
		room = NewRoom(key)
		h.rooms[key] = room
	}
	if room.Add(s) {
		h.log.Debug().Str("subscriber_id", s.ID).Str("channel", s.Channel).Msg("subscriber registered")
	}
}

func (h *Hub) removeSubscriber(s *Subscriber) {
	key := roomKey(s.Channel)
	room, ok := h.rooms[key]
	if !ok || !room.Remove(s) {
		return
	}
	close(s.Events)
	if room.Empty() {
		delete(h.rooms, key)
	}
	h.log.Debug().Str("subscriber_id", s.ID).Str("channel", s.Channel).Msg("subscriber removed")
}

func (h *Hub) dispatch(ev *Event) {
	dropped := 0
	if room, ok := h.rooms[roomKey(ev.Channel)]; ok {
		dropped += room.Broadcast(ev)
	}
	if room, ok := h.rooms[wildcardRoom]; ok {
		dropped += room.Broadcast(ev)
	}
	if dropped > 0 {
		h.log.Warn().Str("channel", ev.Channel).Int("dropped", dropped).Msg("slow subscribers skipped")
	}
}

func (h *Hub) closeAll() {
	for key, room := range h.rooms {
		for s := range room.subscribers {
			close(s.Events)
		}
		delete(h.rooms, key)
	}
}

func roomKey(channel string) string {
	return strings.ToLower(channel)
}
