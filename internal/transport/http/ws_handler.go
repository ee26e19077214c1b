package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdhttp "net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatql-server/internal/auth"
	"github.com/vovakirdan/chatql-server/internal/config"
	"github.com/vovakirdan/chatql-server/internal/proto"
	"github.com/vovakirdan/chatql-server/internal/utils"
)

const wsReadLimit = 1 << 20

// closeError ends the connection with a protocol close code.
type closeError struct {
	code   websocket.StatusCode
	reason string
}

func (e *closeError) Error() string {
	return fmt.Sprintf("close %d: %s", e.code, e.reason)
}

func closeWith(code int, reason string) *closeError {
	return &closeError{code: websocket.StatusCode(code), reason: reason}
}

// WSHandler upgrades HTTP connections and speaks graphql-transport-ws on them.
type WSHandler struct {
	schema   *graphql.Schema
	jwt      *auth.JWTConfig
	cfg      config.WSConfig
	shutdown context.Context
	log      *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler. Connections are closed once
// shutdown is cancelled.
func NewWSHandler(schema *graphql.Schema, jwtConfig *auth.JWTConfig, cfg config.WSConfig, shutdown context.Context, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{
		schema:   schema,
		jwt:      jwtConfig,
		cfg:      cfg,
		shutdown: shutdown,
		log:      logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:       []string{proto.Subprotocol},
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	if conn.Subprotocol() != proto.Subprotocol {
		conn.Close(websocket.StatusCode(proto.CloseSubprotocolNotAcceptable), "Subprotocol not acceptable")
		return
	}
	conn.SetReadLimit(wsReadLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(h.shutdown, cancel)
	defer stop()

	member, _ := auth.MemberFromContext(r.Context())
	s := &wsSession{
		h:       h,
		conn:    conn,
		id:      utils.NewID(),
		member:  member,
		out:     make(chan proto.Outbound, 16),
		ops:     make(map[string]context.CancelFunc),
		limiter: newRateLimiter(h.cfg.SubscribeRate),
	}
	log := h.log.With().Str("conn_id", s.id).Logger()
	s.log = &log

	s.log.Debug().Msg("ws connection opened")
	err = s.run(ctx)

	status := websocket.StatusNormalClosure
	reason := "closing"
	var ce *closeError
	switch {
	case errors.As(err, &ce):
		status, reason = ce.code, ce.reason
		s.log.Debug().Int("code", int(ce.code)).Str("reason", ce.reason).Msg("ws connection closed by server")
	case h.shutdown.Err() != nil:
		status, reason = websocket.StatusGoingAway, "server shutting down"
	case err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF):
		if code := websocket.CloseStatus(err); code != -1 {
			status = code
		}
		// Protocol closes (4xxx) were already decided by this side or the peer.
		if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway && status < 4000 {
			s.log.Warn().Err(err).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// wsSession is the state of one graphql-transport-ws connection.
type wsSession struct {
	h      *WSHandler
	conn   *websocket.Conn
	id     string
	member string
	log    *zerolog.Logger

	out     chan proto.Outbound
	limiter *rateLimiter

	initialised atomic.Bool
	acked       atomic.Bool

	mu  sync.Mutex
	ops map[string]context.CancelFunc
	wg  sync.WaitGroup
}

func (s *wsSession) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.limiter.startReset(ctx.Done())

	initTimer := time.AfterFunc(s.h.cfg.InitTimeout, func() {
		if !s.acked.Load() {
			s.conn.Close(websocket.StatusCode(proto.CloseInitTimeout), "Connection initialisation timeout")
		}
	})
	defer initTimer.Stop()

	errCh := make(chan error, 2)
	go func() {
		errCh <- s.readLoop(ctx)
	}()
	go func() {
		errCh <- s.writeLoop(ctx)
	}()

	err := <-errCh
	cancel() // stop the other goroutine and every running operation
	<-errCh
	s.wg.Wait()

	return err
}

func (s *wsSession) readLoop(ctx context.Context) error {
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			return err
		}

		var msg proto.Message
		if err := json.Unmarshal(data, &msg); err != nil || msg.Type == "" {
			return closeWith(proto.CloseBadRequest, "Invalid message received")
		}

		if err := s.handle(ctx, msg); err != nil {
			return err
		}
	}
}

func (s *wsSession) writeLoop(ctx context.Context) error {
	for {
		select {
		case msg := <-s.out:
			if err := wsjson.Write(ctx, s.conn, msg); err != nil {
				s.log.Error().Err(err).Str("type", msg.Type).Msg("write ws message")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *wsSession) send(ctx context.Context, msg proto.Outbound) error {
	select {
	case s.out <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *wsSession) handle(ctx context.Context, msg proto.Message) error {
	switch msg.Type {
	case proto.TypeConnectionInit:
		return s.handleInit(ctx, msg)
	case proto.TypePing:
		return s.send(ctx, proto.Outbound{Type: proto.TypePong})
	case proto.TypePong:
		return nil
	case proto.TypeSubscribe:
		return s.handleSubscribe(ctx, msg)
	case proto.TypeComplete:
		s.cancelOperation(msg.ID)
		return nil
	default:
		return closeWith(proto.CloseBadRequest, "Invalid message received")
	}
}

func (s *wsSession) handleInit(ctx context.Context, msg proto.Message) error {
	if !s.initialised.CompareAndSwap(false, true) {
		return closeWith(proto.CloseTooManyInitialise, "Too many initialisation requests")
	}

	var payload proto.InitPayload
	if len(msg.Payload) > 0 && string(msg.Payload) != "null" {
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return closeWith(proto.CloseBadRequest, "Invalid connection_init payload")
		}
	}

	if payload.Authorization != "" && s.h.jwt.Enabled() {
		token, err := auth.BearerToken(payload.Authorization)
		if err != nil {
			return closeWith(proto.CloseForbidden, "Forbidden")
		}
		claims, err := auth.ValidateToken(s.h.jwt, token)
		if err != nil {
			s.log.Debug().Err(err).Msg("invalid token in connection_init")
			return closeWith(proto.CloseForbidden, "Forbidden")
		}
		s.member = claims.Member
	}

	s.acked.Store(true)
	s.log.Debug().Str("member", s.member).Msg("ws connection acknowledged")
	return s.send(ctx, proto.Outbound{Type: proto.TypeConnectionAck})
}

func (s *wsSession) handleSubscribe(ctx context.Context, msg proto.Message) error {
	if !s.acked.Load() {
		return closeWith(proto.CloseUnauthorized, "Unauthorized")
	}
	if msg.ID == "" {
		return closeWith(proto.CloseBadRequest, "Invalid message received")
	}

	var payload proto.SubscribePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Query == "" {
		return closeWith(proto.CloseBadRequest, "Invalid subscribe payload")
	}

	if !s.limiter.allow() {
		return s.send(ctx, proto.Outbound{
			ID:   msg.ID,
			Type: proto.TypeError,
			Payload: []proto.Error{{
				Message:    "rate limit exceeded",
				Extensions: map[string]interface{}{"code": "rate_limited"},
			}},
		})
	}

	opCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if _, exists := s.ops[msg.ID]; exists {
		s.mu.Unlock()
		cancel()
		return closeWith(proto.CloseSubscriberExists, fmt.Sprintf("Subscriber for %s already exists", msg.ID))
	}
	s.ops[msg.ID] = cancel
	s.mu.Unlock()

	if s.member != "" {
		opCtx = auth.WithMember(opCtx, s.member)
	}

	// Subscribe registers subscriptions (and runs queries and mutations)
	// before returning, so operations on one connection apply in order.
	stream, err := s.h.schema.Subscribe(opCtx, payload.Query, payload.OperationName, payload.Variables)
	if err != nil {
		s.cancelOperation(msg.ID)
		return s.send(ctx, proto.Outbound{
			ID:      msg.ID,
			Type:    proto.TypeError,
			Payload: []proto.Error{{Message: err.Error()}},
		})
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.forward(opCtx, msg.ID, stream)
	}()
	return nil
}

// forward relays results of one operation. Queries and mutations yield a
// single result; subscriptions yield until cancelled.
func (s *wsSession) forward(ctx context.Context, id string, stream <-chan interface{}) {
	first := true
	for item := range stream {
		resp, ok := item.(*graphql.Response)
		if !ok {
			continue
		}
		// An operation that fails before execution has no data at all.
		if first && resp.Data == nil && len(resp.Errors) > 0 {
			s.finish(ctx, proto.Outbound{ID: id, Type: proto.TypeError, Payload: resp.Errors})
			return
		}
		first = false
		if err := s.send(ctx, proto.Outbound{ID: id, Type: proto.TypeNext, Payload: resp}); err != nil {
			s.cancelOperation(id)
			return
		}
	}

	// A client-side complete cancels ctx; it must not be echoed back.
	if ctx.Err() != nil {
		s.cancelOperation(id)
		return
	}
	s.finish(ctx, proto.Outbound{ID: id, Type: proto.TypeComplete})
}

// finish frees the operation id before its last message goes out, so the
// client may reuse the id as soon as it sees that message.
func (s *wsSession) finish(ctx context.Context, last proto.Outbound) {
	cancel := s.release(last.ID)
	_ = s.send(ctx, last)
	if cancel != nil {
		cancel()
	}
}

func (s *wsSession) release(id string) context.CancelFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	cancel := s.ops[id]
	delete(s.ops, id)
	return cancel
}

func (s *wsSession) cancelOperation(id string) {
	if cancel := s.release(id); cancel != nil {
		cancel()
	}
}
