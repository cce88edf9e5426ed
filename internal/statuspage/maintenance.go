package statuspage

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/events"
	"github.com/goliatone/go-statuspage/pkg/notify"
)

// CreateMaintenanceInput schedules a window for one application.
type CreateMaintenanceInput struct {
	AppID       uuid.UUID `json:"app_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"start_time"`
	EndsAt      time.Time `json:"end_time"`
}

// UpdateMaintenanceInput carries optional window changes.
type UpdateMaintenanceInput struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"start_time"`
	EndsAt      *time.Time `json:"end_time"`
}

// CreateMaintenance stores a window. The organization comes from the app row.
func (s *Service) CreateMaintenance(ctx context.Context, actor auth.Actor, input CreateMaintenanceInput) (*domain.Maintenance, error) {
	app, err := s.GetApp(ctx, actor, input.AppID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validation("title is required")
	}
	if err := validateWindow(input.StartsAt, input.EndsAt); err != nil {
		return nil, err
	}
	m := &domain.Maintenance{
		OrgID:       app.OrgID,
		AppID:       app.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		StartsAt:    input.StartsAt.UTC(),
		EndsAt:      input.EndsAt.UTC(),
	}
	if err := s.maintenance.Create(ctx, m); err != nil {
		return nil, err
	}
	notice := s.maintenanceNotice(ctx, m, app.Name, actor)
	notice.Details = "Scheduled from " + m.StartsAt.Format(time.RFC3339) + " to " + m.EndsAt.Format(time.RFC3339)
	s.emit(ctx, m.OrgID, events.KindNewMaintenance, m, actor, events.WithNotice(notice))
	return m, nil
}

// ListMaintenance returns the windows of an organization, optionally for one app.
func (s *Service) ListMaintenance(ctx context.Context, actor auth.Actor, orgID, appID uuid.UUID) ([]domain.Maintenance, error) {
	if _, err := s.membership(ctx, actor, orgID); err != nil {
		return nil, err
	}
	all, err := s.maintenance.ListByOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if appID == uuid.Nil {
		return all, nil
	}
	items := make([]domain.Maintenance, 0, len(all))
	for _, m := range all {
		if m.AppID == appID {
			items = append(items, m)
		}
	}
	return items, nil
}

// GetMaintenance returns one window of an organization the caller belongs to.
func (s *Service) GetMaintenance(ctx context.Context, actor auth.Actor, id uuid.UUID) (*domain.Maintenance, error) {
	m, err := s.maintenance.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.membership(ctx, actor, m.OrgID); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateMaintenance applies changes, keeping end after start.
func (s *Service) UpdateMaintenance(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateMaintenanceInput) (*domain.Maintenance, error) {
	m, err := s.GetMaintenance(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if input.Title == nil && input.Description == nil && input.StartsAt == nil && input.EndsAt == nil {
		return nil, validation("no fields to update")
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, validation("title cannot be blank")
		}
		m.Title = title
	}
	if input.Description != nil {
		m.Description = strings.TrimSpace(*input.Description)
	}
	if input.StartsAt != nil {
		m.StartsAt = input.StartsAt.UTC()
	}
	if input.EndsAt != nil {
		m.EndsAt = input.EndsAt.UTC()
	}
	if err := validateWindow(m.StartsAt, m.EndsAt); err != nil {
		return nil, err
	}
	if err := s.maintenance.Update(ctx, m); err != nil {
		return nil, err
	}
	s.emit(ctx, m.OrgID, events.KindUpdatedMaintenance, m, actor,
		events.WithNotice(s.maintenanceNotice(ctx, m, s.appName(ctx, m.AppID), actor)))
	return m, nil
}

// DeleteMaintenance removes a window.
func (s *Service) DeleteMaintenance(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	m, err := s.GetMaintenance(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.maintenance.SoftDelete(ctx, m.ID); err != nil {
		return err
	}
	s.emit(ctx, m.OrgID, events.KindDeletedMaintenance, m, actor,
		events.WithNotice(s.maintenanceNotice(ctx, m, s.appName(ctx, m.AppID), actor)))
	return nil
}

func validateWindow(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return validation("start_time and end_time are required")
	}
	if !end.After(start) {
		return validation("end_time must be after start_time")
	}
	return nil
}

func (s *Service) maintenanceNotice(ctx context.Context, m *domain.Maintenance, appName string, actor auth.Actor) notify.Notice {
	fields := map[string]string{
		"window": m.StartsAt.Format(time.RFC3339) + " - " + m.EndsAt.Format(time.RFC3339),
	}
	if appName != "" {
		fields["application"] = appName
	}
	return notify.Notice{
		OrgName:    s.orgName(ctx, m.OrgID),
		EntityName: m.Title,
		ActorName:  actor.DisplayName(),
		Fields:     fields,
	}
}
