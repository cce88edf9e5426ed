package statuspage

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/events"
	"github.com/goliatone/go-statuspage/pkg/notify"
)

// LogInput is a status update posted against an incident.
type LogInput struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// UpdateLogInput carries optional log changes.
type UpdateLogInput struct {
	Status  *string `json:"status"`
	Message *string `json:"message"`
}

// CreateLog stores an update. A log carrying a new status moves the incident
// to that status and announces the incident change on the realtime channel
// only, so members get one email per update.
func (s *Service) CreateLog(ctx context.Context, actor auth.Actor, incidentID uuid.UUID, input LogInput) (*domain.IncidentLog, error) {
	incident, err := s.GetIncident(ctx, actor, incidentID)
	if err != nil {
		return nil, err
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, validation("message is required")
	}
	status := strings.TrimSpace(input.Status)
	if status != "" && !domain.ValidIncidentStatus(status) {
		return nil, validation("unknown incident status %q", status)
	}

	entry := &domain.IncidentLog{
		IncidentID: incident.ID,
		OrgID:      incident.OrgID,
		Status:     status,
		Message:    message,
	}
	cascade := status != "" && status != incident.Status
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.logs.Create(ctx, entry); err != nil {
			return err
		}
		if !cascade {
			return nil
		}
		if err := s.applyIncidentStatus(incident, status); err != nil {
			return err
		}
		return s.incidents.Update(ctx, incident)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, entry.OrgID, events.KindNewLog, entry, actor, events.WithNotice(s.logNotice(ctx, entry, incident, actor, true)))
	if cascade {
		s.emitIncidentUpdate(ctx, incident, actor, events.WithoutNotice())
	}
	return entry, nil
}

// ListLogs returns the updates of an incident.
func (s *Service) ListLogs(ctx context.Context, actor auth.Actor, incidentID uuid.UUID) ([]domain.IncidentLog, error) {
	incident, err := s.GetIncident(ctx, actor, incidentID)
	if err != nil {
		return nil, err
	}
	return s.logs.ListByIncident(ctx, incident.ID)
}

// GetLog returns one update of an incident.
func (s *Service) GetLog(ctx context.Context, actor auth.Actor, incidentID, logID uuid.UUID) (*domain.IncidentLog, error) {
	entry, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		return nil, err
	}
	if entry.IncidentID != incidentID {
		return nil, ErrForbidden
	}
	if _, err := s.membership(ctx, actor, entry.OrgID); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateLog edits an update. The incident status is left untouched.
func (s *Service) UpdateLog(ctx context.Context, actor auth.Actor, incidentID, logID uuid.UUID, input UpdateLogInput) (*domain.IncidentLog, error) {
	entry, err := s.GetLog(ctx, actor, incidentID, logID)
	if err != nil {
		return nil, err
	}
	if input.Status == nil && input.Message == nil {
		return nil, validation("no fields to update")
	}
	if input.Message != nil {
		message := strings.TrimSpace(*input.Message)
		if message == "" {
			return nil, validation("message cannot be blank")
		}
		entry.Message = message
	}
	if input.Status != nil {
		status := strings.TrimSpace(*input.Status)
		if status != "" && !domain.ValidIncidentStatus(status) {
			return nil, validation("unknown incident status %q", status)
		}
		entry.Status = status
	}
	if err := s.logs.Update(ctx, entry); err != nil {
		return nil, err
	}
	incident, _ := s.incidents.GetByID(ctx, entry.IncidentID)
	s.emit(ctx, entry.OrgID, events.KindUpdatedLog, entry, actor, events.WithNotice(s.logNotice(ctx, entry, incident, actor, true)))
	return entry, nil
}

// DeleteLog removes an update.
func (s *Service) DeleteLog(ctx context.Context, actor auth.Actor, incidentID, logID uuid.UUID) error {
	entry, err := s.GetLog(ctx, actor, incidentID, logID)
	if err != nil {
		return err
	}
	if err := s.logs.SoftDelete(ctx, entry.ID); err != nil {
		return err
	}
	incident, _ := s.incidents.GetByID(ctx, entry.IncidentID)
	s.emit(ctx, entry.OrgID, events.KindDeletedLog, entry, actor, events.WithNotice(s.logNotice(ctx, entry, incident, actor, false)))
	return nil
}

func (s *Service) logNotice(ctx context.Context, entry *domain.IncidentLog, incident *domain.Incident, actor auth.Actor, withMessage bool) notify.Notice {
	title := ""
	if incident != nil {
		title = incident.Title
	}
	n := notify.Notice{
		OrgName:    s.orgName(ctx, entry.OrgID),
		EntityName: "Status update for " + title,
		ActorName:  actor.DisplayName(),
		Status:     entry.Status,
	}
	if withMessage {
		n.Details = "Update: " + entry.Message
	}
	if incident != nil {
		n.Fields = map[string]string{"incident": incident.Title}
		if app := s.appName(ctx, incident.AppID); app != "" {
			n.Fields["application"] = app
		}
	}
	return n
}
