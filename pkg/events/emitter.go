package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-statuspage/pkg/activity"
	"github.com/goliatone/go-statuspage/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-statuspage/pkg/interfaces/queue"
	"github.com/goliatone/go-statuspage/pkg/notify"
)

var (
	ErrBroadcasterRequired = errors.New("events: broadcaster is required")
	ErrQueueRequired       = errors.New("events: realtime and background queues are required")
)

// Publisher is the contract mutating operations depend on.
type Publisher interface {
	Emit(ctx context.Context, orgID string, kind Kind, payload any, actorUserID string, opts ...EmitOption)
}

// EmitOption decorates one emission.
type EmitOption func(*EmitSettings)

// EmitSettings is the resolved form of a set of EmitOptions.
type EmitSettings struct {
	Notice   *notify.Notice
	Activity *activity.Event
	Silent   bool
}

// WithNotice attaches the email side channel description.
func WithNotice(n notify.Notice) EmitOption {
	return func(s *EmitSettings) {
		cloned := n.Clone()
		s.Notice = &cloned
	}
}

// WithActivity overrides fields of the audit record.
func WithActivity(evt activity.Event) EmitOption {
	return func(s *EmitSettings) {
		evt.Metadata = activity.CloneMetadata(evt.Metadata)
		s.Activity = &evt
	}
}

// WithoutNotice suppresses the email side channel for this emission.
func WithoutNotice() EmitOption {
	return func(s *EmitSettings) {
		s.Silent = true
	}
}

// Collect resolves opts. Useful for fakes that record emissions.
func Collect(opts ...EmitOption) EmitSettings {
	var s EmitSettings
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

// Emission is the immutable description shared by every consumer of one Emit call.
type Emission struct {
	OrgID    string
	Kind     Kind
	Envelope Envelope
	Notice   *notify.Notice
	Activity activity.Event
	At       time.Time
}

// Dependencies wires the emitter consumers. Realtime should be keyed by org
// so one org's broadcasts leave in submission order.
type Dependencies struct {
	Broadcaster broadcaster.Broadcaster
	Realtime    queue.Queue
	Background  queue.Queue
	Notifier    notify.Notifier
	Activity    activity.Hook
	Logger      logger.Logger
	Now         func() time.Time
}

// Stats reports lifetime counters.
type Stats struct {
	Emitted int64
	Invalid int64
	Dropped int64
}

// Emitter turns completed mutations into broadcasts, notices and audit records.
type Emitter struct {
	broadcaster broadcaster.Broadcaster
	realtime    queue.Queue
	background  queue.Queue
	notifier    notify.Notifier
	activity    activity.Hook
	logger      logger.Logger
	now         func() time.Time

	emitted atomic.Int64
	invalid atomic.Int64
	dropped atomic.Int64
}

var _ Publisher = (*Emitter)(nil)

// New validates dependencies and applies defaults.
func New(deps Dependencies) (*Emitter, error) {
	if deps.Broadcaster == nil {
		return nil, ErrBroadcasterRequired
	}
	if deps.Realtime == nil || deps.Background == nil {
		return nil, ErrQueueRequired
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if deps.Activity == nil {
		deps.Activity = activity.Nop{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Emitter{
		broadcaster: deps.Broadcaster,
		realtime:    deps.Realtime,
		background:  deps.Background,
		notifier:    deps.Notifier,
		activity:    deps.Activity,
		logger:      deps.Logger,
		now:         deps.Now,
	}, nil
}

// Emit schedules delivery of one mutation and returns immediately. orgID must
// come from the persisted row. Invalid input and full queues are logged and
// dropped; nothing is reported to the caller.
func (e *Emitter) Emit(ctx context.Context, orgID string, kind Kind, payload any, actorUserID string, opts ...EmitOption) {
	emission, err := e.build(orgID, kind, payload, actorUserID, Collect(opts...))
	if err != nil {
		e.invalid.Add(1)
		e.logger.Warn("event dropped",
			logger.F("org_id", orgID),
			logger.F("kind", kind),
			logger.F("error", err),
		)
		return
	}
	e.emitted.Add(1)

	// Jobs outlive the request that triggered them.
	ctx = context.WithoutCancel(ctx)

	e.enqueue(ctx, e.realtime, queue.Job{
		Key:  emission.OrgID,
		Name: "broadcast:" + string(kind),
		Run: e.guard("broadcast", emission, func(ctx context.Context) error {
			return e.broadcaster.Broadcast(ctx, broadcaster.Event{
				OrgID:   emission.OrgID,
				Kind:    string(emission.Kind),
				Payload: emission.Envelope,
			})
		}),
	}, emission)

	if emission.Notice != nil {
		notice := *emission.Notice
		e.enqueue(ctx, e.background, queue.Job{
			Name: "notify:" + string(kind),
			Run: e.guard("notify", emission, func(ctx context.Context) error {
				e.notifier.Notify(ctx, notice)
				return nil
			}),
		}, emission)
	}

	record := emission.Activity
	e.enqueue(ctx, e.background, queue.Job{
		Name: "activity:" + string(kind),
		Run: e.guard("activity", emission, func(ctx context.Context) error {
			e.activity.Notify(ctx, record)
			return nil
		}),
	}, emission)
}

// Stats returns lifetime counters.
func (e *Emitter) Stats() Stats {
	return Stats{
		Emitted: e.emitted.Load(),
		Invalid: e.invalid.Load(),
		Dropped: e.dropped.Load(),
	}
}

func (e *Emitter) build(orgID string, kind Kind, payload any, actorUserID string, settings EmitSettings) (Emission, error) {
	orgID = strings.TrimSpace(orgID)
	if orgID == "" {
		return Emission{}, fmt.Errorf("events: org id is required")
	}
	envelope, err := NewEnvelope(kind, payload, actorUserID)
	if err != nil {
		return Emission{}, err
	}
	at := e.now().UTC()
	emission := Emission{
		OrgID:    orgID,
		Kind:     kind,
		Envelope: envelope,
		At:       at,
	}

	if !settings.Silent {
		notice := notify.Notice{}
		if settings.Notice != nil {
			notice = *settings.Notice
		}
		notice.OrgID = orgID
		if notice.EntityType == "" {
			notice.EntityType = kind.EntityType()
		}
		if notice.Action == "" {
			notice.Action = kind.Action()
		}
		if notice.ActorID == "" {
			notice.ActorID = actorUserID
		}
		emission.Notice = &notice
	}

	objectID, _ := IDOf(envelope.Data)
	record := activity.Event{
		Verb:       kind.EntityType() + "." + kind.Action(),
		ActorID:    actorUserID,
		OrgID:      orgID,
		ObjectType: kind.EntityType(),
		ObjectID:   objectID,
		Channel:    "statuspage",
		Metadata:   map[string]any{"kind": string(kind)},
		OccurredAt: at,
	}
	if settings.Notice != nil {
		record.ActorName = settings.Notice.ActorName
	}
	if o := settings.Activity; o != nil {
		mergeActivity(&record, *o)
	}
	emission.Activity = record
	return emission, nil
}

func mergeActivity(dst *activity.Event, src activity.Event) {
	if src.Verb != "" {
		dst.Verb = src.Verb
	}
	if src.ActorID != "" {
		dst.ActorID = src.ActorID
	}
	if src.ActorName != "" {
		dst.ActorName = src.ActorName
	}
	if src.ObjectType != "" {
		dst.ObjectType = src.ObjectType
	}
	if src.ObjectID != "" {
		dst.ObjectID = src.ObjectID
	}
	if src.Channel != "" {
		dst.Channel = src.Channel
	}
	if !src.OccurredAt.IsZero() {
		dst.OccurredAt = src.OccurredAt
	}
	for k, v := range src.Metadata {
		dst.Metadata[k] = v
	}
}

func (e *Emitter) enqueue(ctx context.Context, q queue.Queue, job queue.Job, emission Emission) {
	err := q.Enqueue(ctx, job)
	if err == nil {
		return
	}
	fields := []logger.Field{
		logger.F("job", job.Name),
		logger.F("org_id", emission.OrgID),
		logger.F("error", err),
	}
	if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
		e.dropped.Add(1)
		e.logger.Warn("emission task dropped", fields...)
		return
	}
	e.dropped.Add(1)
	e.logger.Error("emission task rejected", fields...)
}

// guard gives each consumer its own recover and log boundary.
func (e *Emitter) guard(consumer string, emission Emission, fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("emission consumer panicked",
					logger.F("consumer", consumer),
					logger.F("org_id", emission.OrgID),
					logger.F("kind", emission.Kind),
					logger.F("panic", r),
				)
				err = nil
			}
		}()
		if err := fn(ctx); err != nil {
			e.logger.Error("emission consumer failed",
				logger.F("consumer", consumer),
				logger.F("org_id", emission.OrgID),
				logger.F("kind", emission.Kind),
				logger.F("error", err),
			)
		}
		return nil
	}
}
