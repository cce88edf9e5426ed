package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = errors.New("store: not found")

// ListOptions capture pagination and filtering knobs common to repositories.
type ListOptions struct {
	Limit              int
	Offset             int
	Since              time.Time
	Until              time.Time
	IncludeSoftDeleted bool
	// Newest reverses the default created_at ascending order.
	Newest bool
}

// ListResult bundles records and totals.
type ListResult[T any] struct {
	Items []T
	Total int
}

// Repository defines base CRUD helpers reused by entity-specific interfaces.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, opts ListOptions) (ListResult[T], error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type OrganizationRepository interface {
	Repository[domain.Organization]
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Organization, error)
}

type MembershipRepository interface {
	Repository[domain.Membership]
	GetByOrgAndUser(ctx context.Context, orgID uuid.UUID, userID string) (*domain.Membership, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Membership, error)
}

type InviteRepository interface {
	Repository[domain.Invite]
	GetByCode(ctx context.Context, code uuid.UUID) (*domain.Invite, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.Invite, error)
}

type ApplicationRepository interface {
	Repository[domain.Application]
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.Application, error)
}

type AppStatusHistoryRepository interface {
	Repository[domain.AppStatusHistory]
	ListByApp(ctx context.Context, appID uuid.UUID, opts ListOptions) (ListResult[domain.AppStatusHistory], error)
}

type IncidentRepository interface {
	Repository[domain.Incident]
	ListByOrg(ctx context.Context, orgID uuid.UUID, opts ListOptions) (ListResult[domain.Incident], error)
}

type IncidentLogRepository interface {
	Repository[domain.IncidentLog]
	ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]domain.IncidentLog, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID, opts ListOptions) (ListResult[domain.IncidentLog], error)
}

type MaintenanceRepository interface {
	Repository[domain.Maintenance]
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.Maintenance, error)
}
