package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrChannelNotFound is returned when no channel matches the requested name.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrMemberNotFound is returned when no member matches the requested name.
	ErrMemberNotFound = errors.New("member not found")
	// ErrMessageNotFound is returned when no message carries the requested id.
	ErrMessageNotFound = errors.New("message not found")
)

// Member represents a chat member.
type Member struct {
	ID       string
	Name     string
	Channels []string // channel names, in declaration order
}

// Channel represents a chat channel.
type Channel struct {
	ID       string
	Name     string
	FullName string
	Type     string
	Members  []string  // member names, in declaration order
	Messages []Message // nil until the first message is added
}

// Message represents a chat message posted to a channel.
type Message struct {
	ID        string
	Content   string
	CreatedAt time.Time
	Author    string  // member name
	ReplyTo   *string // id of the message replied to, stored as given
}

// MemberStore handles member lookups.
type MemberStore interface {
	// ListMembers returns every member in storage order.
	ListMembers(ctx context.Context) ([]Member, error)

	// GetMemberByName retrieves a member by exact name.
	GetMemberByName(ctx context.Context, name string) (*Member, error)

	// MembersNamed returns the members whose names appear in names,
	// ordered as they are stored rather than as names lists them.
	MembersNamed(ctx context.Context, names []string) ([]Member, error)
}

// ChannelStore handles channel lookups.
type ChannelStore interface {
	// ListChannels returns every channel in storage order.
	ListChannels(ctx context.Context) ([]Channel, error)

	// FindChannel retrieves a channel by name, ignoring case.
	FindChannel(ctx context.Context, name string) (*Channel, error)

	// GetChannelByName retrieves a channel by exact name.
	GetChannelByName(ctx context.Context, name string) (*Channel, error)

	// ChannelsNamed returns the channels whose names appear in names,
	// ordered as they are stored.
	ChannelsNamed(ctx context.Context, names []string) ([]Channel, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	// SaveMessage appends msg to the channel with exactly channelName.
	SaveMessage(ctx context.Context, channelName string, msg Message) error

	// GetMessageByID searches every channel in storage order and returns
	// the first message with the given id.
	GetMessageByID(ctx context.Context, id string) (*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	MemberStore
	ChannelStore
	MessageStore
}
