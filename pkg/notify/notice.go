package notify

import (
	"context"
	"errors"
	"strings"
)

// Entity types that appear in notices.
const (
	EntityApplication = "application"
	EntityIncident    = "incident"
	EntityMaintenance = "maintenance"
	EntityLog         = "log"
)

// Actions that appear in notices.
const (
	ActionCreated  = "created"
	ActionUpdated  = "updated"
	ActionDeleted  = "deleted"
	ActionResolved = "resolved"
)

var (
	ErrInvalidNotice     = errors.New("notify: notice requires org, entity type and action")
	ErrDirectoryRequired = errors.New("notify: directory is required")
	ErrRendererRequired  = errors.New("notify: renderer is required")
	ErrNoMessenger       = errors.New("notify: no messenger registered for channel")
)

// Notice describes one completed mutation for the email side channel.
// It is built by the caller from already-resolved names.
type Notice struct {
	OrgID      string
	OrgName    string
	Action     string
	EntityType string
	EntityName string
	ActorID    string
	ActorName  string
	Status     string
	Details    string
	// Fields carries entity specific extras such as the application name.
	Fields map[string]string
}

// Validate checks the routing fields.
func (n Notice) Validate() error {
	if strings.TrimSpace(n.OrgID) == "" || strings.TrimSpace(n.EntityType) == "" || strings.TrimSpace(n.Action) == "" {
		return ErrInvalidNotice
	}
	return nil
}

// Clone returns a copy that does not share the Fields map.
func (n Notice) Clone() Notice {
	if n.Fields != nil {
		fields := make(map[string]string, len(n.Fields))
		for k, v := range n.Fields {
			fields[k] = v
		}
		n.Fields = fields
	}
	return n
}

// Recipient is an organization member that may receive email.
type Recipient struct {
	UserID   string         `json:"user_id"`
	Email    string         `json:"email"`
	Name     string         `json:"name"`
	Locale   string         `json:"locale,omitempty"`
	Settings map[string]any `json:"settings,omitempty"`
}

// Audience is the organization context needed to address a notice.
type Audience struct {
	OrgID       string         `json:"org_id"`
	OrgName     string         `json:"org_name"`
	OrgSettings map[string]any `json:"org_settings,omitempty"`
	Members     []Recipient    `json:"members"`
}

// Directory resolves the audience of an organization.
type Directory interface {
	Audience(ctx context.Context, orgID string) (Audience, error)
}

// Notifier is the side channel consumed by the event emitter.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, notice Notice)

func (f NotifierFunc) Notify(ctx context.Context, notice Notice) {
	if f != nil {
		f(ctx, notice)
	}
}

// Nop drops every notice.
type Nop struct{}

var _ Notifier = Nop{}

func (Nop) Notify(context.Context, Notice) {}
