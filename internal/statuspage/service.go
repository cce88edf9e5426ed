package statuspage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/events"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	"github.com/goliatone/go-statuspage/pkg/storage"
)

var (
	ErrForbidden     = errors.New("statuspage: forbidden")
	ErrValidation    = errors.New("statuspage: validation failed")
	ErrInviteExpired = errors.New("statuspage: invite has expired")
	ErrUnauthorized  = errors.New("statuspage: actor is required")

	errStoreRequired = errors.New("statuspage: repositories are required")
)

// InviteTTL is how long an invite code stays redeemable.
const InviteTTL = 7 * 24 * time.Hour

// DirectoryInvalidator drops cached audiences after membership changes.
type DirectoryInvalidator interface {
	Invalidate(ctx context.Context, orgID string) error
}

// Dependencies wires repositories and the event publisher into the service.
type Dependencies struct {
	Store     storage.Providers
	Events    events.Publisher
	Directory DirectoryInvalidator
	Logger    logger.Logger
	Now       func() time.Time
}

// Service implements the status page operations. Every mutation persists
// first and then hands the stored row to the event publisher.
type Service struct {
	orgs        store.OrganizationRepository
	members     store.MembershipRepository
	invites     store.InviteRepository
	apps        store.ApplicationRepository
	history     store.AppStatusHistoryRepository
	incidents   store.IncidentRepository
	logs        store.IncidentLogRepository
	maintenance store.MaintenanceRepository
	tx          store.TransactionManager
	events      events.Publisher
	directory   DirectoryInvalidator
	logger      logger.Logger
	now         func() time.Time
}

type nopPublisher struct{}

func (nopPublisher) Emit(context.Context, string, events.Kind, any, string, ...events.EmitOption) {}

// New validates the dependencies and applies defaults.
func New(deps Dependencies) (*Service, error) {
	s := deps.Store
	if s.Organizations == nil || s.Memberships == nil || s.Invites == nil ||
		s.Applications == nil || s.AppHistory == nil || s.Incidents == nil ||
		s.IncidentLogs == nil || s.Maintenance == nil {
		return nil, errStoreRequired
	}
	if s.Transaction == nil {
		s.Transaction = &store.NopTransactionManager{}
	}
	if deps.Events == nil {
		deps.Events = nopPublisher{}
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		orgs:        s.Organizations,
		members:     s.Memberships,
		invites:     s.Invites,
		apps:        s.Applications,
		history:     s.AppHistory,
		incidents:   s.Incidents,
		logs:        s.IncidentLogs,
		maintenance: s.Maintenance,
		tx:          s.Transaction,
		events:      deps.Events,
		directory:   deps.Directory,
		logger:      deps.Logger,
		now:         deps.Now,
	}, nil
}

func (s *Service) clock() time.Time {
	return s.now().UTC()
}

func validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// ParseID parses a path or body identifier.
func ParseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, validation("%s must be a valid id", field)
	}
	return id, nil
}

func requireActor(actor auth.Actor) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return ErrUnauthorized
	}
	return nil
}

// membership returns the caller's membership in orgID or ErrForbidden.
func (s *Service) membership(ctx context.Context, actor auth.Actor, orgID uuid.UUID) (*domain.Membership, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	m, err := s.members.GetByOrgAndUser(ctx, orgID, actor.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrForbidden
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) requireOwner(ctx context.Context, actor auth.Actor, orgID uuid.UUID) (*domain.Membership, error) {
	m, err := s.membership(ctx, actor, orgID)
	if err != nil {
		return nil, err
	}
	if m.Role != domain.RoleOwner {
		return nil, ErrForbidden
	}
	return m, nil
}

func (s *Service) orgName(ctx context.Context, orgID uuid.UUID) string {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		s.logger.Warn("organization lookup failed", logger.F("org_id", orgID.String()), logger.F("error", err))
		return ""
	}
	return org.Name
}

func (s *Service) appName(ctx context.Context, appID uuid.UUID) string {
	app, err := s.apps.GetByID(ctx, appID)
	if err != nil {
		return ""
	}
	return app.Name
}

func (s *Service) invalidateDirectory(ctx context.Context, orgID uuid.UUID) {
	if s.directory == nil {
		return
	}
	if err := s.directory.Invalidate(ctx, orgID.String()); err != nil {
		s.logger.Warn("directory invalidation failed", logger.F("org_id", orgID.String()), logger.F("error", err))
	}
}

func (s *Service) emit(ctx context.Context, orgID uuid.UUID, kind events.Kind, payload any, actor auth.Actor, opts ...events.EmitOption) {
	s.events.Emit(ctx, orgID.String(), kind, payload, actor.UserID, opts...)
}
