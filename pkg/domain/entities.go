package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecordMeta captures identifiers and audit fields shared across entities.
type RecordMeta struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureID assigns a UUID when the struct is about to be persisted.
func (m *RecordMeta) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// EntityID returns the record identifier in its wire form.
func (m RecordMeta) EntityID() string {
	return m.ID.String()
}

// JSONMap persists arbitrary metadata fields as JSON.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if m == nil {
		return errors.New("JSONMap: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("JSONMap: unsupported type %T", value)
	}
}

// Member roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// ValidRole reports whether role is a known membership role.
func ValidRole(role string) bool {
	return role == RoleOwner || role == RoleMember
}

// Application statuses.
const (
	AppStatusOperational   = "operational"
	AppStatusDegraded      = "degraded"
	AppStatusPartialOutage = "partial_outage"
	AppStatusMajorOutage   = "major_outage"
	AppStatusMaintenance   = "maintenance"
)

// ValidAppStatus reports whether status is a known application status.
func ValidAppStatus(status string) bool {
	switch status {
	case AppStatusOperational, AppStatusDegraded, AppStatusPartialOutage, AppStatusMajorOutage, AppStatusMaintenance:
		return true
	}
	return false
}

// Incident statuses, in lifecycle order.
const (
	IncidentReported      = "Reported"
	IncidentInvestigating = "Investigating"
	IncidentIdentified    = "Identified"
	IncidentFixed         = "Fixed"
)

// ValidIncidentStatus reports whether status is a known incident status.
func ValidIncidentStatus(status string) bool {
	switch status {
	case IncidentReported, IncidentInvestigating, IncidentIdentified, IncidentFixed:
		return true
	}
	return false
}

// Organization is the tenant boundary.
type Organization struct {
	bun.BaseModel `bun:"table:organizations"`
	RecordMeta
	Name      string  `bun:"name,notnull" json:"name"`
	CreatedBy string  `bun:"created_by" json:"created_by"`
	Settings  JSONMap `bun:"settings,type:jsonb,nullzero" json:"settings,omitempty"`
}

// Membership links an externally authenticated user to an organization.
// Email and DisplayName are denormalized so recipients resolve locally.
type Membership struct {
	bun.BaseModel `bun:"table:memberships"`
	RecordMeta
	OrgID       uuid.UUID `bun:"org_id,type:uuid,notnull" json:"org_id"`
	UserID      string    `bun:"user_id,notnull" json:"user_id"`
	Email       string    `bun:"email" json:"email"`
	DisplayName string    `bun:"display_name" json:"display_name"`
	Locale      string    `bun:"locale" json:"locale,omitempty"`
	Role        string    `bun:"role,notnull" json:"role"`
	Settings    JSONMap   `bun:"settings,type:jsonb,nullzero" json:"settings,omitempty"`
}

// Invite lets an owner add a member by email.
type Invite struct {
	bun.BaseModel `bun:"table:invites"`
	RecordMeta
	OrgID     uuid.UUID `bun:"org_id,type:uuid,notnull" json:"org_id"`
	Email     string    `bun:"email,notnull" json:"email"`
	Role      string    `bun:"role,notnull" json:"role"`
	Code      uuid.UUID `bun:"code,type:uuid,unique" json:"code"`
	InvitedBy string    `bun:"invited_by" json:"invited_by"`
	ExpiresAt time.Time `bun:"expires_at,notnull" json:"expires_at"`
}

// Expired reports whether the invite can no longer be redeemed at now.
func (i *Invite) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Application is a monitored service shown on the status page.
type Application struct {
	bun.BaseModel `bun:"table:applications"`
	RecordMeta
	OrgID       uuid.UUID `bun:"org_id,type:uuid,notnull" json:"org_id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description string    `bun:"description" json:"description,omitempty"`
	Status      string    `bun:"status,notnull" json:"status"`
}

// AppStatusHistory records every status an application has held.
type AppStatusHistory struct {
	bun.BaseModel `bun:"table:app_status_history"`
	RecordMeta
	AppID      uuid.UUID `bun:"app_id,type:uuid,notnull" json:"app_id"`
	OrgID      uuid.UUID `bun:"org_id,type:uuid,notnull" json:"org_id"`
	Status     string    `bun:"status,notnull" json:"status"`
	RecordedAt time.Time `bun:"recorded_at,notnull" json:"recorded_at"`
}

// Incident is an outage or degradation affecting one application.
type Incident struct {
	bun.BaseModel `bun:"table:incidents"`
	RecordMeta
	OrgID       uuid.UUID  `bun:"org_id,type:uuid,notnull" json:"org_id"`
	AppID       uuid.UUID  `bun:"app_id,type:uuid,notnull" json:"app_id"`
	Title       string     `bun:"title,notnull" json:"title"`
	Description string     `bun:"description" json:"description,omitempty"`
	Status      string     `bun:"status,notnull" json:"status"`
	OccurredAt  time.Time  `bun:"occurred_at,notnull" json:"time"`
	ResolvedAt  *time.Time `bun:"resolved_at,nullzero" json:"resolved_at,omitempty"`
}

// Active reports whether the incident is still open.
func (i *Incident) Active() bool {
	return i.Status != IncidentFixed
}

// IncidentLog is one status update posted against an incident.
type IncidentLog struct {
	bun.BaseModel `bun:"table:incident_logs"`
	RecordMeta
	IncidentID uuid.UUID `bun:"incident_id,type:uuid,notnull" json:"incident_id"`
	OrgID      uuid.UUID `bun:"org_id,type:uuid,notnull" json:"org_id"`
	Status     string    `bun:"status" json:"status,omitempty"`
	Message    string    `bun:"message,notnull" json:"message"`
}

// Maintenance is a scheduled window for one application.
type Maintenance struct {
	bun.BaseModel `bun:"table:maintenances"`
	RecordMeta
	OrgID       uuid.UUID `bun:"org_id,type:uuid,notnull" json:"org_id"`
	AppID       uuid.UUID `bun:"app_id,type:uuid,notnull" json:"app_id"`
	Title       string    `bun:"title,notnull" json:"title"`
	Description string    `bun:"description" json:"description,omitempty"`
	StartsAt    time.Time `bun:"starts_at,notnull" json:"start_time"`
	EndsAt      time.Time `bun:"ends_at,notnull" json:"end_time"`
}

// InProgress reports whether now falls inside the window.
func (m *Maintenance) InProgress(now time.Time) bool {
	return !now.Before(m.StartsAt) && !now.After(m.EndsAt)
}
