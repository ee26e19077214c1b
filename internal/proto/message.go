package proto

import "encoding/json"

// Subprotocol is negotiated during the WebSocket handshake.
const Subprotocol = "graphql-transport-ws"

const (
	TypeConnectionInit = "connection_init"
	TypeConnectionAck  = "connection_ack"
	TypePing           = "ping"
	TypePong           = "pong"
	TypeSubscribe      = "subscribe"
	TypeNext           = "next"
	TypeError          = "error"
	TypeComplete       = "complete"
)

// Close codes defined by the protocol.
const (
	CloseBadRequest               = 4400
	CloseUnauthorized             = 4401
	CloseForbidden                = 4403
	CloseSubprotocolNotAcceptable = 4406
	CloseInitTimeout              = 4408
	CloseSubscriberExists         = 4409
	CloseTooManyInitialise        = 4429
)

// Message is the envelope for every frame in either direction.
type Message struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// InitPayload is the optional payload of connection_init.
type InitPayload struct {
	Authorization string `json:"authorization,omitempty"`
}

// SubscribePayload carries a GraphQL request, same shape as an HTTP request body.
type SubscribePayload struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	Extensions    map[string]interface{} `json:"extensions,omitempty"`
}

// Outbound is the server-side envelope with an already-encodable payload.
type Outbound struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Error describes a request-level error in the GraphQL response format.
type Error struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}
