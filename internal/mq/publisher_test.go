package mq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestNewMessage_Envelope(t *testing.T) {
	msg := newMessage(MessageTypeWorkflowActivated, WorkflowActivatedPayload{WorkflowID: "42", RequestID: "req-1"})

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"id", "type", "payload", "timestamp"} {
		if _, ok := got[key]; !ok {
			t.Errorf("envelope is missing %q: %s", key, data)
		}
	}
	if got["type"] != "workflow.activated" {
		t.Errorf("unexpected type %v", got["type"])
	}
	payload := got["payload"].(map[string]any)
	if payload["workflow_id"] != "42" || payload["request_id"] != "req-1" {
		t.Errorf("unexpected payload %v", payload)
	}

	if other := newMessage(MessageTypeWorkflowActivated, nil); other.ID == msg.ID {
		t.Error("message ids must be unique")
	}
}

func TestRoutingKeysMatchMessageTypes(t *testing.T) {
	if string(RoutingKeyWorkflowActivated) != string(MessageTypeWorkflowActivated) {
		t.Error("workflow.activated routing key mismatch")
	}
	if string(RoutingKeyCredentialCreated) != string(MessageTypeCredentialCreated) {
		t.Error("credential.created routing key mismatch")
	}
}

func TestPublish_WithoutChannel(t *testing.T) {
	conn := &Connection{logger: slog.New(slog.NewTextHandler(io.Discard, nil)), closedCh: make(chan struct{})}
	p := NewPublisher(conn, conn.logger)

	err := p.PublishCredentialCreated(context.Background(), CredentialCreatedPayload{Name: "slack"})
	if !errors.Is(err, ErrNoChannel) {
		t.Errorf("expected ErrNoChannel, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.PublishWorkflowActivated(ctx, WorkflowActivatedPayload{WorkflowID: "1"}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
