package proto

import (
	"encoding/json"
	"testing"
)

func TestSubscribeMessageDecodes(t *testing.T) {
	raw := `{"id":"1","type":"subscribe","payload":{"query":"subscription { messageAdded { id } }","variables":{"a":1}}}`

	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if msg.ID != "1" || msg.Type != TypeSubscribe {
		t.Fatalf("unexpected envelope: %+v", msg)
	}

	var payload SubscribePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Query == "" || payload.Variables["a"] != float64(1) {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestOutboundOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Outbound{Type: TypeConnectionAck})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"type":"connection_ack"}` {
		t.Fatalf("unexpected encoding: %s", data)
	}
}
