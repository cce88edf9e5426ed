package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rabbitmq/amqp091-go"

	"github.com/goliatone/go-statuspage/pkg/interfaces/broadcaster"
)

type published struct {
	exchange string
	key      string
	msg      amqp091.Publishing
}

type fakePublisher struct {
	sent []published
	err  error
}

func (f *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestRelayPublishesToOrgRoutingKey(t *testing.T) {
	pub := &fakePublisher{}
	relay, err := New(pub, "", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = relay.Broadcast(context.Background(), broadcaster.Event{
		OrgID:   "org-1",
		Kind:    "new_incident",
		Payload: map[string]any{"type": "new_incident", "data": map[string]any{"id": "i1"}},
	})
	if err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if len(pub.sent) != 1 {
		t.Fatalf("expected one publish, got %d", len(pub.sent))
	}
	got := pub.sent[0]
	if got.exchange != "statuspage.events" || got.key != "org.org-1.new_incident" {
		t.Fatalf("unexpected exchange/key %s %s", got.exchange, got.key)
	}
	if got.msg.ContentType != "application/json" || got.msg.MessageId == "" {
		t.Fatalf("unexpected publishing %+v", got.msg)
	}
	var body Message
	if err := json.Unmarshal(got.msg.Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.OrgID != "org-1" || body.Kind != "new_incident" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestRelayWrapsPublishError(t *testing.T) {
	boom := errors.New("channel closed")
	relay, _ := New(&fakePublisher{err: boom}, "x", nil)
	err := relay.Broadcast(context.Background(), broadcaster.Event{OrgID: "o", Kind: "k"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRelayRequiresPublisherAndURL(t *testing.T) {
	if _, err := New(nil, "x", nil); !errors.Is(err, ErrPublisherRequired) {
		t.Fatalf("expected ErrPublisherRequired, got %v", err)
	}
	if _, err := Dial(context.Background(), Config{}, nil); !errors.Is(err, ErrURLRequired) {
		t.Fatalf("expected ErrURLRequired, got %v", err)
	}
	relay, _ := New(&fakePublisher{}, "x", nil)
	if err := relay.Close(); err != nil {
		t.Fatalf("Close without connection: %v", err)
	}
}
