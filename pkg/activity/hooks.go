package activity

import (
	"context"
	"time"

	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
)

// Event captures one audited mutation of a status page entity.
type Event struct {
	Verb       string
	ActorID    string
	ActorName  string
	OrgID      string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Hook observers receive activity events.
type Hook interface {
	Notify(ctx context.Context, evt Event)
}

// Hooks provides a convenient fan-out collection.
type Hooks []Hook

// Notify delivers the event to every hook, skipping nil entries.
func (h Hooks) Notify(ctx context.Context, evt Event) {
	if len(h) == 0 {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	for _, hook := range h {
		if hook == nil {
			continue
		}
		hook.Notify(ctx, evt)
	}
}

// Nop is a no-op hook useful for defaults.
type Nop struct{}

func (Nop) Notify(_ context.Context, _ Event) {}

// LogHook writes activity events to a logger.
type LogHook struct {
	Logger logger.Logger
}

func (h LogHook) Notify(_ context.Context, evt Event) {
	if h.Logger == nil {
		return
	}
	h.Logger.Info("activity",
		logger.Field{Key: "verb", Value: evt.Verb},
		logger.Field{Key: "org_id", Value: evt.OrgID},
		logger.Field{Key: "object_type", Value: evt.ObjectType},
		logger.Field{Key: "object_id", Value: evt.ObjectID},
		logger.Field{Key: "actor_id", Value: evt.ActorID},
	)
}

// CloneMetadata makes a shallow copy so hooks can mutate without affecting callers.
func CloneMetadata(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
