package activity

import (
	"context"
	"testing"
)

type recordingHook struct {
	events []Event
}

func (r *recordingHook) Notify(_ context.Context, evt Event) {
	r.events = append(r.events, evt)
}

func TestHooksFanOutAndStampTime(t *testing.T) {
	a, b := &recordingHook{}, &recordingHook{}
	hooks := Hooks{a, nil, b}

	hooks.Notify(context.Background(), Event{Verb: "application.created"})

	if len(a.events) != 1 || len(b.events) != 1 {
		t.Fatalf("expected both hooks to receive the event")
	}
	if a.events[0].OccurredAt.IsZero() {
		t.Fatalf("occurred_at not stamped")
	}
}

func TestCloneMetadataIsShallowCopy(t *testing.T) {
	src := map[string]any{"status": "Fixed"}
	dst := CloneMetadata(src)
	dst["status"] = "Reported"
	if src["status"] != "Fixed" {
		t.Fatalf("clone shares storage with source")
	}
	if CloneMetadata(nil) != nil {
		t.Fatalf("expected nil clone for empty input")
	}
}
