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

// CreateIncidentInput opens an incident against an application. The
// organization is taken from the application row.
type CreateIncidentInput struct {
	AppID       uuid.UUID `json:"app_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"time"`
}

// UpdateIncidentInput carries optional incident changes.
type UpdateIncidentInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// IncidentFilter narrows incident listings.
type IncidentFilter struct {
	AppID      uuid.UUID
	ActiveOnly bool
}

// CreateIncident stores a new incident.
func (s *Service) CreateIncident(ctx context.Context, actor auth.Actor, input CreateIncidentInput) (*domain.Incident, error) {
	app, err := s.GetApp(ctx, actor, input.AppID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, validation("title is required")
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = domain.IncidentReported
	}
	if !domain.ValidIncidentStatus(status) {
		return nil, validation("unknown incident status %q", status)
	}
	occurred := input.OccurredAt
	if occurred.IsZero() {
		occurred = s.clock()
	}
	incident := &domain.Incident{
		OrgID:       app.OrgID,
		AppID:       app.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      status,
		OccurredAt:  occurred.UTC(),
	}
	if status == domain.IncidentFixed {
		resolved := s.clock()
		incident.ResolvedAt = &resolved
	}
	if err := s.incidents.Create(ctx, incident); err != nil {
		return nil, err
	}
	s.emit(ctx, incident.OrgID, events.KindNewIncident, incident, actor,
		events.WithNotice(s.incidentNotice(ctx, incident, app.Name, actor, "")))
	return incident, nil
}

// ListIncidents returns the incidents of an organization, newest first.
func (s *Service) ListIncidents(ctx context.Context, actor auth.Actor, orgID uuid.UUID, filter IncidentFilter) ([]domain.Incident, error) {
	if _, err := s.membership(ctx, actor, orgID); err != nil {
		return nil, err
	}
	result, err := s.incidents.ListByOrg(ctx, orgID, store.ListOptions{Newest: true})
	if err != nil {
		return nil, err
	}
	items := make([]domain.Incident, 0, len(result.Items))
	for _, inc := range result.Items {
		if filter.AppID != uuid.Nil && inc.AppID != filter.AppID {
			continue
		}
		if filter.ActiveOnly && !inc.Active() {
			continue
		}
		items = append(items, inc)
	}
	return items, nil
}

// GetIncident returns one incident of an organization the caller belongs to.
func (s *Service) GetIncident(ctx context.Context, actor auth.Actor, id uuid.UUID) (*domain.Incident, error) {
	incident, err := s.incidents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.membership(ctx, actor, incident.OrgID); err != nil {
		return nil, err
	}
	return incident, nil
}

// UpdateIncident applies changes. Moving to Fixed is announced as resolved.
func (s *Service) UpdateIncident(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateIncidentInput) (*domain.Incident, error) {
	incident, err := s.GetIncident(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if input.Title == nil && input.Description == nil && input.Status == nil {
		return nil, validation("no fields to update")
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, validation("title cannot be blank")
		}
		incident.Title = title
	}
	if input.Description != nil {
		incident.Description = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		if err := s.applyIncidentStatus(incident, strings.TrimSpace(*input.Status)); err != nil {
			return nil, err
		}
	}
	if err := s.incidents.Update(ctx, incident); err != nil {
		return nil, err
	}
	s.emitIncidentUpdate(ctx, incident, actor)
	return incident, nil
}

// DeleteIncident removes an incident.
func (s *Service) DeleteIncident(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	incident, err := s.GetIncident(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.incidents.SoftDelete(ctx, incident.ID); err != nil {
		return err
	}
	s.emit(ctx, incident.OrgID, events.KindDeletedIncident, incident, actor,
		events.WithNotice(s.incidentNotice(ctx, incident, s.appName(ctx, incident.AppID), actor, "")))
	return nil
}

func (s *Service) applyIncidentStatus(incident *domain.Incident, status string) error {
	if !domain.ValidIncidentStatus(status) {
		return validation("unknown incident status %q", status)
	}
	if status == incident.Status {
		return nil
	}
	incident.Status = status
	if status == domain.IncidentFixed {
		resolved := s.clock()
		incident.ResolvedAt = &resolved
	} else {
		incident.ResolvedAt = nil
	}
	return nil
}

func (s *Service) emitIncidentUpdate(ctx context.Context, incident *domain.Incident, actor auth.Actor, opts ...events.EmitOption) {
	action := ""
	if incident.Status == domain.IncidentFixed {
		action = notify.ActionResolved
	}
	notice := s.incidentNotice(ctx, incident, s.appName(ctx, incident.AppID), actor, action)
	notice.Details = "Status: " + incident.Status
	all := append([]events.EmitOption{events.WithNotice(notice)}, opts...)
	s.emit(ctx, incident.OrgID, events.KindUpdatedIncident, incident, actor, all...)
}

func (s *Service) incidentNotice(ctx context.Context, incident *domain.Incident, appName string, actor auth.Actor, action string) notify.Notice {
	n := notify.Notice{
		OrgName:    s.orgName(ctx, incident.OrgID),
		Action:     action,
		EntityName: incident.Title,
		ActorName:  actor.DisplayName(),
		Status:     incident.Status,
	}
	if appName != "" {
		n.Fields = map[string]string{"application": appName}
	}
	return n
}
