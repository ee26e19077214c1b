package graph

import (
	"context"
	"errors"
	"fmt"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/samber/lo"

	"github.com/vovakirdan/chatql-server/internal/store"
)

// createdAtLayout renders timestamps as ISO-8601 with millisecond precision.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

type memberResolver struct {
	root *Resolver
	m    store.Member
}

func (m *memberResolver) ID() graphql.ID { return graphql.ID(m.m.ID) }
func (m *memberResolver) Name() string  { return m.m.Name }

// Channels follows the order of the channel collection, not the member's list.
func (m *memberResolver) Channels(ctx context.Context) (*[]*channelResolver, error) {
	channels, err := m.root.store.ChannelsNamed(ctx, m.m.Channels)
	if err != nil {
		return nil, internalError("list member channels", err)
	}
	out := m.root.channels(channels)
	return &out, nil
}

type channelResolver struct {
	root *Resolver
	ch   store.Channel
}

func (c *channelResolver) ID() graphql.ID      { return graphql.ID(c.ch.ID) }
func (c *channelResolver) Name() string        { return c.ch.Name }
func (c *channelResolver) FullName() string    { return c.ch.FullName }
func (c *channelResolver) Type() string        { return c.ch.Type }
func (c *channelResolver) MembersCount() int32 { return int32(len(c.ch.Members)) }

// Members follows the order of the member collection, not the channel's list.
func (c *channelResolver) Members(ctx context.Context) ([]*memberResolver, error) {
	members, err := c.root.store.MembersNamed(ctx, c.ch.Members)
	if err != nil {
		return nil, internalError("list channel members", err)
	}
	return c.root.members(members), nil
}

// Messages is null for a channel that never had a message list.
func (c *channelResolver) Messages() *[]*messageResolver {
	if c.ch.Messages == nil {
		return nil
	}
	out := lo.Map(c.ch.Messages, func(msg store.Message, _ int) *messageResolver {
		return &messageResolver{root: c.root, msg: msg}
	})
	return &out
}

type messageResolver struct {
	root *Resolver
	msg  store.Message
}

func (m *messageResolver) ID() graphql.ID    { return graphql.ID(m.msg.ID) }
func (m *messageResolver) Content() string   { return m.msg.Content }
func (m *messageResolver) CreatedAt() string { return m.msg.CreatedAt.UTC().Format(createdAtLayout) }

// Author errors when the stored name matches no member, since the field is non-null.
func (m *messageResolver) Author(ctx context.Context) (*memberResolver, error) {
	member, err := m.root.store.GetMemberByName(ctx, m.msg.Author)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return nil, resolverError(ErrCodeMemberNotFound, fmt.Sprintf("member %s not found", m.msg.Author), err)
		}
		return nil, internalError("get author", err)
	}
	return &memberResolver{root: m.root, m: *member}, nil
}

// ReplyTo resolves to null when the reference is absent or dangling.
func (m *messageResolver) ReplyTo(ctx context.Context) (*messageResolver, error) {
	id := lo.FromPtr(m.msg.ReplyTo)
	if id == "" {
		return nil, nil
	}
	parent, err := m.root.store.GetMessageByID(ctx, id)
	if errors.Is(err, store.ErrMessageNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internalError("get reply target", err)
	}
	return &messageResolver{root: m.root, msg: *parent}, nil
}
