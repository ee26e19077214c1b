package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/vovakirdan/chatql-server/internal/store"
)

// MemoryStore implements store.Store on top of process memory.
// Nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	members  []store.Member
	channels []store.Channel
}

// New creates a store holding the given members and channels.
func New(members []store.Member, channels []store.Channel) *MemoryStore {
	return &MemoryStore{
		members:  lo.Map(members, func(m store.Member, _ int) store.Member { return cloneMember(m) }),
		channels: lo.Map(channels, func(c store.Channel, _ int) store.Channel { return cloneChannel(c) }),
	}
}

// NewSeeded creates a store pre-populated with the built-in dataset.
func NewSeeded() *MemoryStore {
	return New(SeedMembers(), SeedChannels())
}

// ==== MemberStore implementation ====

// ListMembers returns every member in storage order.
func (s *MemoryStore) ListMembers(_ context.Context) ([]store.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Map(s.members, func(m store.Member, _ int) store.Member { return cloneMember(m) }), nil
}

// GetMemberByName retrieves a member by exact name.
func (s *MemoryStore) GetMemberByName(_ context.Context, name string) (*store.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := lo.Find(s.members, func(m store.Member) bool { return m.Name == name })
	if !ok {
		return nil, fmt.Errorf("member %s: %w", name, store.ErrMemberNotFound)
	}
	m = cloneMember(m)
	return &m, nil
}

// MembersNamed returns the members listed in names, in storage order.
func (s *MemoryStore) MembersNamed(_ context.Context, names []string) ([]store.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := lo.Filter(s.members, func(m store.Member, _ int) bool { return lo.Contains(names, m.Name) })
	return lo.Map(found, func(m store.Member, _ int) store.Member { return cloneMember(m) }), nil
}

// ==== ChannelStore implementation ====

// ListChannels returns every channel in storage order.
func (s *MemoryStore) ListChannels(_ context.Context) ([]store.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return lo.Map(s.channels, func(c store.Channel, _ int) store.Channel { return cloneChannel(c) }), nil
}

// FindChannel retrieves a channel by name, ignoring case.
func (s *MemoryStore) FindChannel(_ context.Context, name string) (*store.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := lo.Find(s.channels, func(c store.Channel) bool { return strings.EqualFold(c.Name, name) })
	if !ok {
		return nil, fmt.Errorf("channel %s: %w", name, store.ErrChannelNotFound)
	}
	c = cloneChannel(c)
	return &c, nil
}

// GetChannelByName retrieves a channel by exact name.
func (s *MemoryStore) GetChannelByName(_ context.Context, name string) (*store.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := lo.Find(s.channels, func(c store.Channel) bool { return c.Name == name })
	if !ok {
		return nil, fmt.Errorf("channel %s: %w", name, store.ErrChannelNotFound)
	}
	c = cloneChannel(c)
	return &c, nil
}

// ChannelsNamed returns the channels listed in names, in storage order.
func (s *MemoryStore) ChannelsNamed(_ context.Context, names []string) ([]store.Channel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := lo.Filter(s.channels, func(c store.Channel, _ int) bool { return lo.Contains(names, c.Name) })
	return lo.Map(found, func(c store.Channel, _ int) store.Channel { return cloneChannel(c) }), nil
}

// ==== MessageStore implementation ====

// SaveMessage appends msg to the channel whose name equals channelName exactly.
// Nothing is written when the channel does not exist.
func (s *MemoryStore) SaveMessage(_ context.Context, channelName string, msg store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.channels, func(c store.Channel) bool { return c.Name == channelName })
	if idx < 0 {
		return fmt.Errorf("channel %s: %w", channelName, store.ErrChannelNotFound)
	}
	s.channels[idx].Messages = append(s.channels[idx].Messages, msg)
	return nil
}

// GetMessageByID returns the first message with the given id across all channels.
func (s *MemoryStore) GetMessageByID(_ context.Context, id string) (*store.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.channels {
		if m, ok := lo.Find(c.Messages, func(m store.Message) bool { return m.ID == id }); ok {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("message %s: %w", id, store.ErrMessageNotFound)
}

func cloneMember(m store.Member) store.Member {
	m.Channels = slices.Clone(m.Channels)
	return m
}

// cloneChannel copies the slices so callers never alias store state.
// A nil message list stays nil.
func cloneChannel(c store.Channel) store.Channel {
	c.Members = slices.Clone(c.Members)
	c.Messages = slices.Clone(c.Messages)
	return c
}
