package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/vovakirdan/chatql-server/internal/auth"
	"github.com/vovakirdan/chatql-server/internal/core"
	"github.com/vovakirdan/chatql-server/internal/store"
	"github.com/vovakirdan/chatql-server/internal/utils"
)

// Resolver is the root of the schema. It owns no data itself; everything is
// read from and written to the injected store.
type Resolver struct {
	store         store.Store
	hub           *core.Hub
	defaultAuthor string
	log           *zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewResolver builds the resolver root. hub may be nil, in which case
// subscriptions are unavailable and added messages are not fanned out.
func NewResolver(st store.Store, hub *core.Hub, defaultAuthor string, logger *zerolog.Logger) *Resolver {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Resolver{
		store:         st,
		hub:           hub,
		defaultAuthor: defaultAuthor,
		log:           logger,
		now:           time.Now,
		newID:         utils.NewID,
	}
}

// ==== Query ====

// AllMembers returns every member in storage order.
func (r *Resolver) AllMembers(ctx context.Context) (*[]*memberResolver, error) {
	members, err := r.store.ListMembers(ctx)
	if err != nil {
		return nil, internalError("list members", err)
	}
	out := r.members(members)
	return &out, nil
}

// AllChannels returns every channel in storage order.
func (r *Resolver) AllChannels(ctx context.Context) (*[]*channelResolver, error) {
	channels, err := r.store.ListChannels(ctx)
	if err != nil {
		return nil, internalError("list channels", err)
	}
	out := r.channels(channels)
	return &out, nil
}

// Channel looks a channel up by name, ignoring case. Unknown names yield null.
func (r *Resolver) Channel(ctx context.Context, args struct{ Name string }) (*channelResolver, error) {
	ch, err := r.store.FindChannel(ctx, args.Name)
	if errors.Is(err, store.ErrChannelNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internalError("find channel", err)
	}
	return &channelResolver{root: r, ch: *ch}, nil
}

// ==== Mutation ====

// AddMessage appends a message to the channel named exactly channelName.
// The author is the member attached to the request, or the default author.
func (r *Resolver) AddMessage(ctx context.Context, args struct {
	ChannelName string
	Content     string
	ReplyTo     *string
}) (*messageResolver, error) {
	if readOnly(ctx) {
		return nil, resolverError(ErrCodeMethodNotAllowed, "addMessage is not allowed in a read-only request", nil)
	}

	if _, err := r.store.GetChannelByName(ctx, args.ChannelName); err != nil {
		return nil, r.saveError(args.ChannelName, err)
	}

	author, err := r.author(ctx)
	if err != nil {
		return nil, err
	}

	msg := store.Message{
		ID:        r.newID(),
		Content:   args.Content,
		CreatedAt: r.now().UTC(),
		Author:    author,
		ReplyTo:   args.ReplyTo,
	}

	if err := r.store.SaveMessage(ctx, args.ChannelName, msg); err != nil {
		return nil, r.saveError(args.ChannelName, err)
	}

	r.log.Debug().
		Str("channel", args.ChannelName).
		Str("message_id", msg.ID).
		Str("author", author).
		Msg("message added")

	if r.hub != nil {
		r.hub.Publish(&core.Event{Kind: core.EventMessageAdded, Channel: args.ChannelName, Message: msg})
	}

	return &messageResolver{root: r, msg: msg}, nil
}

func (r *Resolver) saveError(channelName string, err error) *ResolverError {
	if errors.Is(err, store.ErrChannelNotFound) {
		return resolverError(ErrCodeChannelNotFound, fmt.Sprintf("Channel %s not found", channelName), err)
	}
	return internalError("save message", err)
}

func (r *Resolver) author(ctx context.Context) (string, error) {
	name, ok := auth.MemberFromContext(ctx)
	if !ok {
		return r.defaultAuthor, nil
	}
	if _, err := r.store.GetMemberByName(ctx, name); err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			return "", resolverError(ErrCodeMemberNotFound, fmt.Sprintf("member %s not found", name), err)
		}
		return "", internalError("get member", err)
	}
	return name, nil
}

// ==== Subscription ====

// MessageAdded streams messages added after the call, optionally limited to
// one channel. The stream ends when ctx is cancelled or the hub stops.
func (r *Resolver) MessageAdded(ctx context.Context, args struct{ ChannelName *string }) (<-chan *messageResolver, error) {
	if r.hub == nil {
		return nil, resolverError(ErrCodeUnavailable, "subscriptions unavailable", nil)
	}

	sub := core.NewSubscriber(r.newID(), lo.FromPtr(args.ChannelName))
	if err := r.hub.Subscribe(sub); err != nil {
		return nil, resolverError(ErrCodeUnavailable, "subscriptions unavailable", err)
	}

	out := make(chan *messageResolver)
	go func() {
		defer close(out)
		defer r.hub.Unsubscribe(sub)

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub.Events:
				if !ok {
					return
				}
				if ev.Kind != core.EventMessageAdded {
					continue
				}
				select {
				case out <- &messageResolver{root: r, msg: ev.Message}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func (r *Resolver) members(members []store.Member) []*memberResolver {
	return lo.Map(members, func(m store.Member, _ int) *memberResolver {
		return &memberResolver{root: r, m: m}
	})
}

func (r *Resolver) channels(channels []store.Channel) []*channelResolver {
	return lo.Map(channels, func(c store.Channel, _ int) *channelResolver {
		return &channelResolver{root: r, ch: c}
	})
}

func internalError(op string, err error) *ResolverError {
	return resolverError(ErrCodeInternal, op+" failed", err)
}
