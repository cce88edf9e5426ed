package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/notify"
)

func TestKindsAreValidAndMapToNotices(t *testing.T) {
	kinds := Kinds()
	if len(kinds) != 12 {
		t.Fatalf("expected 12 kinds, got %d", len(kinds))
	}
	for _, k := range kinds {
		if !k.Valid() {
			t.Fatalf("expected %s to be valid", k)
		}
		if k.EntityType() == "" || k.Action() == "" {
			t.Fatalf("expected %s to map to entity/action", k)
		}
	}
	if KindDeletedIncident.EntityType() != notify.EntityIncident || KindDeletedIncident.Action() != notify.ActionDeleted {
		t.Fatalf("unexpected mapping for deleted_incident")
	}
	if KindNewApp.EntityType() != notify.EntityApplication {
		t.Fatalf("expected app to map to application")
	}
	for _, bad := range []Kind{"", "new", "created_app", "new_user", "new_app_extra"} {
		if bad.Valid() {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}

func TestKindFor(t *testing.T) {
	kind, err := KindFor(notify.EntityMaintenance, OpUpdated)
	if err != nil || kind != KindUpdatedMaintenance {
		t.Fatalf("unexpected kind %q %v", kind, err)
	}
	kind, err = KindFor("app", OpNew)
	if err != nil || kind != KindNewApp {
		t.Fatalf("unexpected kind %q %v", kind, err)
	}
	if _, err := KindFor("user", OpNew); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := KindFor(notify.EntityLog, "archived"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestNewEnvelopeCoercesDeleteToTombstone(t *testing.T) {
	id := uuid.New()
	app := &domain.Application{Name: "API"}
	app.ID = id

	cases := []struct {
		name    string
		payload any
	}{
		{"record", app},
		{"uuid", id},
		{"string", id.String()},
		{"map", map[string]any{"id": id.String(), "name": "API"}},
		{"tombstone", Tombstone{ID: id.String()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env, err := NewEnvelope(KindDeletedApp, tc.payload, "user-1")
			if err != nil {
				t.Fatalf("envelope: %v", err)
			}
			tomb, ok := env.Data.(Tombstone)
			if !ok || tomb.ID != id.String() {
				t.Fatalf("expected tombstone %s, got %#v", id, env.Data)
			}
		})
	}

	if _, err := NewEnvelope(KindDeletedApp, &domain.Application{}, "u"); err == nil {
		t.Fatalf("expected error for record without id")
	}
}

func TestEnvelopeJSONShape(t *testing.T) {
	env, err := NewEnvelope(KindNewApp, map[string]any{"id": 1}, "user-9")
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	raw, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"type":"new_app","data":{"id":1},"actor_user_id":"user-9"}`
	if string(raw) != want {
		t.Fatalf("unexpected json %s", raw)
	}

	if _, err := NewEnvelope(KindUpdatedIncident, nil, "u"); err == nil {
		t.Fatalf("expected error for nil payload")
	}
	if _, err := NewEnvelope("bogus", map[string]any{}, "u"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}
