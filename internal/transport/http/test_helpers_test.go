package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatql-server/internal/config"
	"github.com/vovakirdan/chatql-server/internal/core"
	"github.com/vovakirdan/chatql-server/internal/graph"
	"github.com/vovakirdan/chatql-server/internal/proto"
	"github.com/vovakirdan/chatql-server/internal/store/memory"
)

const testSecret = "test-secret"

type gqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []proto.Error   `json:"errors"`
}

func startTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	disabledLogger := zerolog.New(nil)

	hub := core.NewHub(&disabledLogger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	resolver := graph.NewResolver(memory.NewSeeded(), hub, cfg.DefaultAuthor, &disabledLogger)
	schema, err := graph.NewSchema(resolver, graph.Options{MaxDepth: cfg.GraphQL.MaxDepth}, &disabledLogger)
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}

	server := NewServer(schema, &cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		cancel()
		ts.Close()
	})
	return ts
}

func withIdentity(cfg *config.Config) {
	cfg.Auth.JWTSecret = testSecret
}

func postGraphQL(t *testing.T, ts *httptest.Server, token string, req GraphQLRequest) (int, gqlResponse) {
	t.Helper()

	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	httpReq, err := http.NewRequest(http.MethodPost, ts.URL+"/graphql", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(httpReq)
	if err != nil {
		t.Fatalf("post graphql: %v", err)
	}
	defer resp.Body.Close()

	var out gqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func dialGraphQLWS(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/graphql"
	conn, _, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{proto.Subprotocol},
	})
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func writeWS(ctx context.Context, t *testing.T, conn *websocket.Conn, msg any) {
	t.Helper()
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		t.Fatalf("write ws: %v", err)
	}
}

func readWS(ctx context.Context, t *testing.T, conn *websocket.Conn) proto.Message {
	t.Helper()
	var msg proto.Message
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("read ws: %v", err)
	}
	return msg
}

func expectWSType(ctx context.Context, t *testing.T, conn *websocket.Conn, want string) proto.Message {
	t.Helper()
	msg := readWS(ctx, t, conn)
	if msg.Type != want {
		t.Fatalf("expected %s, got %s (payload %s)", want, msg.Type, msg.Payload)
	}
	return msg
}

func expectClose(ctx context.Context, t *testing.T, conn *websocket.Conn, want int) {
	t.Helper()
	for {
		_, _, err := conn.Read(ctx)
		if err == nil {
			continue
		}
		if got := websocket.CloseStatus(err); got != websocket.StatusCode(want) {
			t.Fatalf("expected close %d, got %d (%v)", want, got, err)
		}
		return
	}
}

// initWS performs the connection_init handshake.
func initWS(ctx context.Context, t *testing.T, conn *websocket.Conn, payload any) {
	t.Helper()
	writeWS(ctx, t, conn, proto.Outbound{Type: proto.TypeConnectionInit, Payload: payload})
	expectWSType(ctx, t, conn, proto.TypeConnectionAck)
}

func subscribeWS(ctx context.Context, t *testing.T, conn *websocket.Conn, id, query string, variables map[string]any) {
	t.Helper()
	writeWS(ctx, t, conn, proto.Outbound{
		ID:   id,
		Type: proto.TypeSubscribe,
		Payload: proto.SubscribePayload{
			Query:     query,
			Variables: variables,
		},
	})
}

// syncWS waits until every message sent before it has been handled.
func syncWS(ctx context.Context, t *testing.T, conn *websocket.Conn) {
	t.Helper()
	writeWS(ctx, t, conn, proto.Outbound{Type: proto.TypePing})
	expectWSType(ctx, t, conn, proto.TypePong)
}
