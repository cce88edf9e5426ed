package statuspage

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/events"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	"github.com/goliatone/go-statuspage/pkg/notify"
)

// CreateAppInput describes a new monitored application.
type CreateAppInput struct {
	OrgID       uuid.UUID `json:"org_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
}

// UpdateAppInput carries optional application changes.
type UpdateAppInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// HistoryFilter bounds an application history query.
type HistoryFilter struct {
	Since time.Time
	Until time.Time
	Limit int
}

// CreateApp stores the application and its first history row.
func (s *Service) CreateApp(ctx context.Context, actor auth.Actor, input CreateAppInput) (*domain.Application, error) {
	if _, err := s.membership(ctx, actor, input.OrgID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validation("name is required")
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = domain.AppStatusOperational
	}
	if !domain.ValidAppStatus(status) {
		return nil, validation("unknown application status %q", status)
	}
	app := &domain.Application{
		OrgID:       input.OrgID,
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
	}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.apps.Create(ctx, app); err != nil {
			return err
		}
		return s.recordStatus(ctx, app)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, app.OrgID, events.KindNewApp, app, actor, events.WithNotice(notify.Notice{
		OrgName:    s.orgName(ctx, app.OrgID),
		EntityName: app.Name,
		ActorName:  actor.DisplayName(),
		Status:     app.Status,
	}))
	return app, nil
}

// ListApps returns the applications of an organization.
func (s *Service) ListApps(ctx context.Context, actor auth.Actor, orgID uuid.UUID) ([]domain.Application, error) {
	if _, err := s.membership(ctx, actor, orgID); err != nil {
		return nil, err
	}
	return s.apps.ListByOrg(ctx, orgID)
}

// GetApp returns one application of an organization the caller belongs to.
func (s *Service) GetApp(ctx context.Context, actor auth.Actor, id uuid.UUID) (*domain.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.membership(ctx, actor, app.OrgID); err != nil {
		return nil, err
	}
	return app, nil
}

// UpdateApp applies changes. A status change writes a history row before
// the update is broadcast.
func (s *Service) UpdateApp(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateAppInput) (*domain.Application, error) {
	app, err := s.GetApp(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if input.Name == nil && input.Description == nil && input.Status == nil {
		return nil, validation("no fields to update")
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, validation("name cannot be blank")
		}
		app.Name = name
	}
	if input.Description != nil {
		app.Description = strings.TrimSpace(*input.Description)
	}
	statusChanged := false
	if input.Status != nil {
		status := strings.TrimSpace(*input.Status)
		if !domain.ValidAppStatus(status) {
			return nil, validation("unknown application status %q", status)
		}
		statusChanged = status != app.Status
		app.Status = status
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.apps.Update(ctx, app); err != nil {
			return err
		}
		if statusChanged {
			return s.recordStatus(ctx, app)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notice := notify.Notice{
		OrgName:    s.orgName(ctx, app.OrgID),
		EntityName: app.Name,
		ActorName:  actor.DisplayName(),
		Status:     app.Status,
	}
	if statusChanged {
		notice.Details = "Status changed to " + app.Status
	}
	s.emit(ctx, app.OrgID, events.KindUpdatedApp, app, actor, events.WithNotice(notice))
	return app, nil
}

// DeleteApp removes an application.
func (s *Service) DeleteApp(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	app, err := s.GetApp(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.apps.SoftDelete(ctx, app.ID); err != nil {
		return err
	}
	s.emit(ctx, app.OrgID, events.KindDeletedApp, app, actor, events.WithNotice(notify.Notice{
		OrgName:    s.orgName(ctx, app.OrgID),
		EntityName: app.Name,
		ActorName:  actor.DisplayName(),
		Status:     app.Status,
	}))
	return nil
}

// AppHistory returns the status history of an application, newest first.
func (s *Service) AppHistory(ctx context.Context, actor auth.Actor, id uuid.UUID, filter HistoryFilter) ([]domain.AppStatusHistory, error) {
	app, err := s.GetApp(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	result, err := s.history.ListByApp(ctx, app.ID, store.ListOptions{
		Since:  filter.Since,
		Until:  filter.Until,
		Limit:  filter.Limit,
		Newest: true,
	})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (s *Service) recordStatus(ctx context.Context, app *domain.Application) error {
	return s.history.Create(ctx, &domain.AppStatusHistory{
		AppID:      app.ID,
		OrgID:      app.OrgID,
		Status:     app.Status,
		RecordedAt: s.clock(),
	})
}
