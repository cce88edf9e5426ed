package commands

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
)

var errActorRequired = errors.New("commands: actor is required")

// Catalog exposes go-command compatible handlers for mutations that return
// no body, so hosts can dispatch them from HTTP, queues or a CLI alike.
type Catalog struct {
	DeleteApp         command.Commander[DeleteApp]
	DeleteIncident    command.Commander[DeleteIncident]
	DeleteLog         command.Commander[DeleteLog]
	DeleteMaintenance command.Commander[DeleteMaintenance]
	JoinOrganization  command.Commander[JoinOrganization]
	RemoveMember      command.Commander[RemoveMember]
}

// Service is the subset of the status page service the catalog dispatches to.
type Service interface {
	DeleteApp(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	DeleteIncident(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	DeleteLog(ctx context.Context, actor auth.Actor, incidentID, logID uuid.UUID) error
	DeleteMaintenance(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	Join(ctx context.Context, actor auth.Actor, code uuid.UUID) (*domain.Membership, error)
	RemoveMember(ctx context.Context, actor auth.Actor, orgID uuid.UUID, userID string) error
}

// Dependencies wires the service into the command catalog.
type Dependencies struct {
	Service Service
	Logger  logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Service == nil {
		return nil, errors.New("commands: statuspage service is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	svc := deps.Service
	return &Catalog{
		DeleteApp:         deleteAppCommand{svc: svc},
		DeleteIncident:    deleteIncidentCommand{svc: svc},
		DeleteLog:         deleteLogCommand{svc: svc},
		DeleteMaintenance: deleteMaintenanceCommand{svc: svc},
		JoinOrganization:  joinCommand{svc: svc, logger: deps.Logger},
		RemoveMember:      removeMemberCommand{svc: svc, logger: deps.Logger},
	}, nil
}

// Commanders returns every handler so callers can register them with go-command registries.
func (c *Catalog) Commanders() []any {
	if c == nil {
		return nil
	}
	return []any{
		c.DeleteApp,
		c.DeleteIncident,
		c.DeleteLog,
		c.DeleteMaintenance,
		c.JoinOrganization,
		c.RemoveMember,
	}
}

func checkActor(actor auth.Actor) error {
	if strings.TrimSpace(actor.UserID) == "" {
		return errActorRequired
	}
	return nil
}

// DeleteApp removes an application.
type DeleteApp struct {
	Actor auth.Actor `json:"-"`
	ID    uuid.UUID  `json:"id"`
}

type deleteAppCommand struct{ svc Service }

func (c deleteAppCommand) Execute(ctx context.Context, msg DeleteApp) error {
	if err := checkActor(msg.Actor); err != nil {
		return err
	}
	return c.svc.DeleteApp(ctx, msg.Actor, msg.ID)
}

// DeleteIncident removes an incident.
type DeleteIncident struct {
	Actor auth.Actor `json:"-"`
	ID    uuid.UUID  `json:"id"`
}

type deleteIncidentCommand struct{ svc Service }

func (c deleteIncidentCommand) Execute(ctx context.Context, msg DeleteIncident) error {
	if err := checkActor(msg.Actor); err != nil {
		return err
	}
	return c.svc.DeleteIncident(ctx, msg.Actor, msg.ID)
}

// DeleteLog removes one incident update.
type DeleteLog struct {
	Actor      auth.Actor `json:"-"`
	IncidentID uuid.UUID  `json:"incident_id"`
	ID         uuid.UUID  `json:"id"`
}

type deleteLogCommand struct{ svc Service }

func (c deleteLogCommand) Execute(ctx context.Context, msg DeleteLog) error {
	if err := checkActor(msg.Actor); err != nil {
		return err
	}
	return c.svc.DeleteLog(ctx, msg.Actor, msg.IncidentID, msg.ID)
}

// DeleteMaintenance removes a maintenance window.
type DeleteMaintenance struct {
	Actor auth.Actor `json:"-"`
	ID    uuid.UUID  `json:"id"`
}

type deleteMaintenanceCommand struct{ svc Service }

func (c deleteMaintenanceCommand) Execute(ctx context.Context, msg DeleteMaintenance) error {
	if err := checkActor(msg.Actor); err != nil {
		return err
	}
	return c.svc.DeleteMaintenance(ctx, msg.Actor, msg.ID)
}

// JoinOrganization redeems an invite code.
type JoinOrganization struct {
	Actor auth.Actor `json:"-"`
	Code  uuid.UUID  `json:"code"`
}

type joinCommand struct {
	svc    Service
	logger logger.Logger
}

func (c joinCommand) Execute(ctx context.Context, msg JoinOrganization) error {
	if err := checkActor(msg.Actor); err != nil {
		return err
	}
	m, err := c.svc.Join(ctx, msg.Actor, msg.Code)
	if err != nil {
		return err
	}
	c.logger.Info("organization joined",
		logger.F("org_id", m.OrgID.String()),
		logger.F("user_id", m.UserID),
		logger.F("role", m.Role),
	)
	return nil
}

// RemoveMember deletes a membership.
type RemoveMember struct {
	Actor  auth.Actor `json:"-"`
	OrgID  uuid.UUID  `json:"org_id"`
	UserID string     `json:"user_id"`
}

type removeMemberCommand struct {
	svc    Service
	logger logger.Logger
}

func (c removeMemberCommand) Execute(ctx context.Context, msg RemoveMember) error {
	if err := checkActor(msg.Actor); err != nil {
		return err
	}
	if strings.TrimSpace(msg.UserID) == "" {
		return errors.New("commands: user id is required")
	}
	if err := c.svc.RemoveMember(ctx, msg.Actor, msg.OrgID, msg.UserID); err != nil {
		return err
	}
	c.logger.Info("member removed",
		logger.F("org_id", msg.OrgID.String()),
		logger.F("user_id", msg.UserID),
		logger.F("actor_id", msg.Actor.UserID),
	)
	return nil
}
