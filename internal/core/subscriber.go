package core

// Subscriber receives events for one channel, or for every channel when
// Channel is empty.
type Subscriber struct {
	ID      string
	Channel string
	Events  chan *Event
}

// NewSubscriber constructs a subscriber with an initialized event buffer.
func NewSubscriber(id, channel string) *Subscriber {
	return &Subscriber{
		ID:      id,
		Channel: channel,
		Events:  make(chan *Event, 16),
	}
}
