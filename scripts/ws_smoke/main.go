package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/chatql-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:4000/graphql", "GraphQL WebSocket address")
	token := flag.String("token", "", "optional bearer token sent in connection_init")
	channel := flag.String("channel", "Pubg", "channel to post to and watch")
	text := flag.String("text", "hello from smoke test", "message content to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, &websocket.DialOptions{
		Subprotocols: []string{proto.Subprotocol},
	})
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	mustSend := func(v interface{}) error {
		if err := wsjson.Write(ctx, conn, v); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		return nil
	}

	hello := proto.Outbound{Type: proto.TypeConnectionInit}
	if *token != "" {
		hello.Payload = proto.InitPayload{Authorization: "Bearer " + *token}
	}
	if err := mustSend(hello); err != nil {
		return err
	}

	if err := mustSend(proto.Outbound{
		ID:   "watch",
		Type: proto.TypeSubscribe,
		Payload: proto.SubscribePayload{
			Query:     `subscription ($ch: String) { messageAdded(channelName: $ch) { id content createdAt author { name } } }`,
			Variables: map[string]interface{}{"ch": *channel},
		},
	}); err != nil {
		return err
	}

	if err := mustSend(proto.Outbound{
		ID:   "post",
		Type: proto.TypeSubscribe,
		Payload: proto.SubscribePayload{
			Query:     `mutation ($ch: String!, $text: String!) { addMessage(channelName: $ch, content: $text) { id } }`,
			Variables: map[string]interface{}{"ch": *channel, "text": *text},
		},
	}); err != nil {
		return err
	}

	for {
		var msg proto.Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received: type=%s", msg.Type)
		if msg.ID != "" {
			fmt.Printf(" id=%s", msg.ID)
		}
		if len(msg.Payload) > 0 {
			fmt.Printf(" payload=%s", msg.Payload)
		}
		fmt.Println()

		switch {
		case msg.Type == proto.TypeError:
			return fmt.Errorf("operation %s failed: %s", msg.ID, msg.Payload)
		case msg.Type == proto.TypeNext && msg.ID == "watch":
			return nil
		}
	}
}
