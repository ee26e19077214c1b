package core

// Room groups subscribers listening on the same channel filter.
type Room struct {
	Key         string
	subscribers map[*Subscriber]struct{}
}

// NewRoom constructs a room with no subscribers.
func NewRoom(key string) *Room {
	return &Room{
		Key:         key,
		subscribers: make(map[*Subscriber]struct{}),
	}
}

// Add inserts a subscriber into the room. Returns true if newly added.
func (r *Room) Add(s *Subscriber) bool {
	if _, exists := r.subscribers[s]; exists {
		return false
	}
	r.subscribers[s] = struct{}{}
	return true
}

// Remove deletes a subscriber from the room. Returns true if removed.
func (r *Room) Remove(s *Subscriber) bool {
	if _, exists := r.subscribers[s]; !exists {
		return false
	}
	delete(r.subscribers, s)
	return true
}

// Broadcast sends an event to all subscribers in the room and reports how
// many of them were skipped because their buffer was full.
func (r *Room) Broadcast(event *Event) int {
	dropped := 0
	for s := range r.subscribers {
		select {
		case s.Events <- event:
		default:
			// Drop if slow consumer.
			dropped++
		}
	}
	return dropped
}

// Empty returns true if no subscribers are in the room.
func (r *Room) Empty() bool {
	return len(r.subscribers) == 0
}
