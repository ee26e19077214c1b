package graph

import (
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/rs/zerolog"
)

// SchemaSDL is the public API of the server.
const SchemaSDL = `
	schema {
		query: Query
		mutation: Mutation
		subscription: Subscription
	}

	type Message {
		id: ID!
		content: String!
		createdAt: String!
		author: Member!
		replyTo: Message
	}

	type Member {
		id: ID!
		name: String!
		channels: [Channel!]
	}

	type Channel {
		id: ID!
		name: String!
		fullName: String!
		type: String!
		members: [Member!]!
		messages: [Message!]
		membersCount: Int!
	}

	type Query {
		allMembers: [Member!]
		allChannels: [Channel!]
		channel(name: String!): Channel
	}

	type Mutation {
		addMessage(channelName: String!, content: String!, replyTo: String): Message
	}

	type Subscription {
		# Emits every message added after the subscription starts,
		# optionally restricted to one channel (case-insensitive).
		messageAdded(channelName: String): Message!
	}
`

// Options tunes schema execution.
type Options struct {
	// MaxDepth bounds query nesting; zero means unlimited.
	MaxDepth int
}

// NewSchema parses the schema and binds it to the resolver root.
func NewSchema(root *Resolver, opts Options, logger *zerolog.Logger) (*graphql.Schema, error) {
	schemaOpts := []graphql.SchemaOpt{
		graphql.Logger(&panicLogger{log: logger}),
	}
	if opts.MaxDepth > 0 {
		schemaOpts = append(schemaOpts, graphql.MaxDepth(opts.MaxDepth))
	}
	return graphql.ParseSchema(SchemaSDL, root, schemaOpts...)
}
