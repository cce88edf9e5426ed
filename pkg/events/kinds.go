package events

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/notify"
)

// Kind names one real-time event type.
type Kind string

const (
	KindNewApp             Kind = "new_app"
	KindUpdatedApp         Kind = "updated_app"
	KindDeletedApp         Kind = "deleted_app"
	KindNewIncident        Kind = "new_incident"
	KindUpdatedIncident    Kind = "updated_incident"
	KindDeletedIncident    Kind = "deleted_incident"
	KindNewMaintenance     Kind = "new_maintenance"
	KindUpdatedMaintenance Kind = "updated_maintenance"
	KindDeletedMaintenance Kind = "deleted_maintenance"
	KindNewLog             Kind = "new_log"
	KindUpdatedLog         Kind = "updated_log"
	KindDeletedLog         Kind = "deleted_log"
)

// Operations a kind can describe.
const (
	OpNew     = "new"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

var ErrUnknownKind = errors.New("events: unknown event kind")

var subjects = map[string]string{
	"app":         notify.EntityApplication,
	"incident":    notify.EntityIncident,
	"maintenance": notify.EntityMaintenance,
	"log":         notify.EntityLog,
}

var opActions = map[string]string{
	OpNew:     notify.ActionCreated,
	OpUpdated: notify.ActionUpdated,
	OpDeleted: notify.ActionDeleted,
}

// Kinds lists every valid kind.
func Kinds() []Kind {
	return []Kind{
		KindNewApp, KindUpdatedApp, KindDeletedApp,
		KindNewIncident, KindUpdatedIncident, KindDeletedIncident,
		KindNewMaintenance, KindUpdatedMaintenance, KindDeletedMaintenance,
		KindNewLog, KindUpdatedLog, KindDeletedLog,
	}
}

func (k Kind) split() (op, subject string, ok bool) {
	op, subject, ok = strings.Cut(string(k), "_")
	if !ok {
		return "", "", false
	}
	if _, known := opActions[op]; !known {
		return "", "", false
	}
	if _, known := subjects[subject]; !known {
		return "", "", false
	}
	return op, subject, true
}

// Valid reports whether k is one of the twelve known kinds.
func (k Kind) Valid() bool {
	_, _, ok := k.split()
	return ok
}

// IsDelete reports whether k carries a tombstone payload.
func (k Kind) IsDelete() bool {
	op, _, ok := k.split()
	return ok && op == OpDeleted
}

// EntityType returns the notice entity type ("application", "incident", ...).
func (k Kind) EntityType() string {
	_, subject, ok := k.split()
	if !ok {
		return ""
	}
	return subjects[subject]
}

// Action returns the notice action ("created", "updated", "deleted").
func (k Kind) Action() string {
	op, _, ok := k.split()
	if !ok {
		return ""
	}
	return opActions[op]
}

// KindFor builds a kind from a notice entity type and an operation.
func KindFor(entityType, op string) (Kind, error) {
	for subject, entity := range subjects {
		if entity == entityType || subject == entityType {
			kind := Kind(op + "_" + subject)
			if !kind.Valid() {
				return "", fmt.Errorf("%w: %s", ErrUnknownKind, kind)
			}
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %s/%s", ErrUnknownKind, entityType, op)
}

// Envelope is the JSON frame written to subscribers.
type Envelope struct {
	Type        Kind   `json:"type"`
	Data        any    `json:"data"`
	ActorUserID string `json:"actor_user_id"`
}

// Tombstone is the payload of delete kinds.
type Tombstone struct {
	ID string `json:"id"`
}

type identified interface {
	EntityID() string
}

// IDOf extracts an identifier from a payload: tombstones, strings, UUIDs,
// maps with an "id" key and records exposing EntityID.
func IDOf(payload any) (string, bool) {
	switch v := payload.(type) {
	case nil:
		return "", false
	case Tombstone:
		return v.ID, v.ID != ""
	case *Tombstone:
		if v == nil {
			return "", false
		}
		return v.ID, v.ID != ""
	case string:
		return v, strings.TrimSpace(v) != ""
	case uuid.UUID:
		return v.String(), v != uuid.Nil
	case map[string]any:
		id, ok := v["id"]
		if !ok || id == nil {
			return "", false
		}
		s := fmt.Sprint(id)
		return s, s != ""
	case identified:
		id := v.EntityID()
		return id, id != "" && id != uuid.Nil.String()
	default:
		return "", false
	}
}

// NewEnvelope builds the frame for kind. Delete kinds coerce payload to a
// Tombstone and fail when no identifier can be found.
func NewEnvelope(kind Kind, payload any, actorUserID string) (Envelope, error) {
	if !kind.Valid() {
		return Envelope{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if kind.IsDelete() {
		id, ok := IDOf(payload)
		if !ok {
			return Envelope{}, fmt.Errorf("events: %s requires an id payload", kind)
		}
		payload = Tombstone{ID: id}
	} else if payload == nil {
		return Envelope{}, fmt.Errorf("events: %s requires a payload", kind)
	}
	return Envelope{Type: kind, Data: payload, ActorUserID: actorUserID}, nil
}
