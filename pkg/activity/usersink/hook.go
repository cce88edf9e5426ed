package usersink

import (
	"context"
	"time"

	"github.com/goliatone/go-statuspage/pkg/activity"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts activity events into go-users ActivitySink records.
type Hook struct {
	Sink   types.ActivitySink
	Logger logger.Logger
}

// Notify maps the activity event into a types.ActivityRecord and forwards it.
func (h Hook) Notify(ctx context.Context, evt activity.Event) {
	if h.Sink == nil {
		return
	}
	record := types.ActivityRecord{
		ID:         uuid.New(),
		UserID:     parseUUID(evt.ActorID),
		ActorID:    parseUUID(evt.ActorID),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		TenantID:   parseUUID(evt.OrgID),
		OrgID:      parseUUID(evt.OrgID),
		Data:       buildData(evt),
		OccurredAt: evt.OccurredAt,
	}
	if record.OccurredAt.IsZero() {
		record.OccurredAt = time.Now().UTC()
	}
	if err := h.Sink.Log(ctx, record); err != nil && h.Logger != nil {
		h.Logger.Warn("activity sink failed",
			logger.Field{Key: "verb", Value: evt.Verb},
			logger.Field{Key: "error", Value: err},
		)
	}
}

// LoggerSink is a types.ActivitySink that writes records to a logger.
type LoggerSink struct {
	Logger logger.Logger
}

var _ types.ActivitySink = LoggerSink{}

func (s LoggerSink) Log(_ context.Context, rec types.ActivityRecord) error {
	if s.Logger == nil {
		return nil
	}
	s.Logger.Info("activity recorded",
		logger.Field{Key: "id", Value: rec.ID},
		logger.Field{Key: "verb", Value: rec.Verb},
		logger.Field{Key: "object_type", Value: rec.ObjectType},
		logger.Field{Key: "object_id", Value: rec.ObjectID},
		logger.Field{Key: "org_id", Value: rec.OrgID},
	)
	return nil
}

func buildData(evt activity.Event) map[string]any {
	data := activity.CloneMetadata(evt.Metadata)
	if data == nil {
		data = make(map[string]any)
	}
	// Actors come from an external identity provider and are not always UUIDs.
	if evt.ActorID != "" {
		data["actor_id"] = evt.ActorID
	}
	if evt.ActorName != "" {
		data["actor_name"] = evt.ActorName
	}
	return data
}

func parseUUID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
