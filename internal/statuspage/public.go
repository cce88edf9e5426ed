package statuspage

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
)

// Timeline limits.
const (
	DefaultTimelineLimit  = 50
	MaxTimelineLimit      = 100
	OverviewTimelineLimit = 20
)

// PublicOrganization is the unauthenticated view of an organization.
type PublicOrganization struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Summary reports open incidents and maintenance windows.
type Summary struct {
	ActiveIncidentsCount    int                  `json:"active_incidents_count"`
	ActiveIncidents         []domain.Incident    `json:"active_incidents"`
	CurrentMaintenanceCount int                  `json:"current_maintenance_count"`
	CurrentMaintenance      []domain.Maintenance `json:"current_maintenance"`
	NextMaintenance         *domain.Maintenance  `json:"next_maintenance"`
}

// TimelineIncident is an incident with its application attached.
type TimelineIncident struct {
	domain.Incident
	Application *domain.Application `json:"application,omitempty"`
}

// TimelineEntry is an incident log with its incident attached.
type TimelineEntry struct {
	domain.IncidentLog
	Incident *TimelineIncident `json:"incident,omitempty"`
}

// Overview bundles everything a public status page renders.
type Overview struct {
	Organization     PublicOrganization   `json:"organization"`
	Services         []domain.Application `json:"services"`
	IncidentsSummary Summary              `json:"incidents_summary"`
	RecentTimeline   []TimelineEntry      `json:"recent_timeline"`
}

// PublicOrganizations lists every organization by id and name.
func (s *Service) PublicOrganizations(ctx context.Context) ([]PublicOrganization, error) {
	result, err := s.orgs.List(ctx, store.ListOptions{})
	if err != nil {
		return nil, err
	}
	out := make([]PublicOrganization, 0, len(result.Items))
	for _, org := range result.Items {
		out = append(out, PublicOrganization{ID: org.ID, Name: org.Name})
	}
	return out, nil
}

// PublicServices returns the applications of an organization.
func (s *Service) PublicServices(ctx context.Context, orgID uuid.UUID) ([]domain.Application, error) {
	if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	return s.apps.ListByOrg(ctx, orgID)
}

// PublicSummary reports active incidents, running maintenance and the next
// scheduled window.
func (s *Service) PublicSummary(ctx context.Context, orgID uuid.UUID) (Summary, error) {
	if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
		return Summary{}, err
	}
	return s.summary(ctx, orgID)
}

// PublicTimeline returns the newest incident logs of an organization. limit
// defaults to 50 and is capped at 100.
func (s *Service) PublicTimeline(ctx context.Context, orgID uuid.UUID, limit int) ([]TimelineEntry, error) {
	if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
		return nil, err
	}
	return s.timeline(ctx, orgID, clampLimit(limit))
}

// PublicOverview combines services, summary and the 20 newest timeline entries.
func (s *Service) PublicOverview(ctx context.Context, orgID uuid.UUID) (Overview, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return Overview{}, err
	}
	services, err := s.apps.ListByOrg(ctx, orgID)
	if err != nil {
		return Overview{}, err
	}
	summary, err := s.summary(ctx, orgID)
	if err != nil {
		return Overview{}, err
	}
	timeline, err := s.timeline(ctx, orgID, OverviewTimelineLimit)
	if err != nil {
		return Overview{}, err
	}
	if services == nil {
		services = []domain.Application{}
	}
	return Overview{
		Organization:     PublicOrganization{ID: org.ID, Name: org.Name},
		Services:         services,
		IncidentsSummary: summary,
		RecentTimeline:   timeline,
	}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultTimelineLimit
	}
	if limit > MaxTimelineLimit {
		return MaxTimelineLimit
	}
	return limit
}

func (s *Service) summary(ctx context.Context, orgID uuid.UUID) (Summary, error) {
	incidents, err := s.incidents.ListByOrg(ctx, orgID, store.ListOptions{Newest: true})
	if err != nil {
		return Summary{}, err
	}
	out := Summary{
		ActiveIncidents:    []domain.Incident{},
		CurrentMaintenance: []domain.Maintenance{},
	}
	for _, inc := range incidents.Items {
		if inc.Active() {
			out.ActiveIncidents = append(out.ActiveIncidents, inc)
		}
	}

	windows, err := s.maintenance.ListByOrg(ctx, orgID)
	if err != nil {
		return Summary{}, err
	}
	now := s.clock()
	var upcoming []domain.Maintenance
	for _, m := range windows {
		switch {
		case m.InProgress(now):
			out.CurrentMaintenance = append(out.CurrentMaintenance, m)
		case m.StartsAt.After(now):
			upcoming = append(upcoming, m)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].StartsAt.Before(upcoming[j].StartsAt)
	})
	if len(upcoming) > 0 {
		next := upcoming[0]
		out.NextMaintenance = &next
	}
	out.ActiveIncidentsCount = len(out.ActiveIncidents)
	out.CurrentMaintenanceCount = len(out.CurrentMaintenance)
	return out, nil
}

func (s *Service) timeline(ctx context.Context, orgID uuid.UUID, limit int) ([]TimelineEntry, error) {
	result, err := s.logs.ListByOrg(ctx, orgID, store.ListOptions{Limit: limit, Newest: true})
	if err != nil {
		return nil, err
	}
	incidents := map[uuid.UUID]*TimelineIncident{}
	apps := map[uuid.UUID]*domain.Application{}
	out := make([]TimelineEntry, 0, len(result.Items))
	for _, entry := range result.Items {
		item := TimelineEntry{IncidentLog: entry}
		inc, seen := incidents[entry.IncidentID]
		if !seen {
			if found, err := s.incidents.GetByID(ctx, entry.IncidentID); err == nil {
				inc = &TimelineIncident{Incident: *found}
				app, ok := apps[found.AppID]
				if !ok {
					if a, err := s.apps.GetByID(ctx, found.AppID); err == nil {
						app = a
					}
					apps[found.AppID] = app
				}
				inc.Application = app
			}
			incidents[entry.IncidentID] = inc
		}
		item.Incident = inc
		out = append(out, item)
	}
	return out, nil
}
