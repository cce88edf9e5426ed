package statuspage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
)

func TestPublicSummarySplitsMaintenance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApp(t, "API")

	open, _ := f.svc.CreateIncident(ctx, f.owner, CreateIncidentInput{AppID: app.ID, Title: "Open"})
	_, _ = f.svc.CreateIncident(ctx, f.owner, CreateIncidentInput{AppID: app.ID, Title: "Done", Status: domain.IncidentFixed})

	mk := func(title string, start, end time.Time) {
		if _, err := f.svc.CreateMaintenance(ctx, f.owner, CreateMaintenanceInput{AppID: app.ID, Title: title, StartsAt: start, EndsAt: end}); err != nil {
			t.Fatalf("maintenance %s: %v", title, err)
		}
	}
	mk("past", f.now.Add(-3*time.Hour), f.now.Add(-2*time.Hour))
	mk("running", f.now.Add(-time.Hour), f.now.Add(time.Hour))
	mk("later", f.now.Add(48*time.Hour), f.now.Add(49*time.Hour))
	mk("soon", f.now.Add(2*time.Hour), f.now.Add(3*time.Hour))

	summary, err := f.svc.PublicSummary(ctx, f.org.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.ActiveIncidentsCount != 1 || summary.ActiveIncidents[0].ID != open.ID {
		t.Fatalf("unexpected active incidents %+v", summary.ActiveIncidents)
	}
	if summary.CurrentMaintenanceCount != 1 || summary.CurrentMaintenance[0].Title != "running" {
		t.Fatalf("unexpected current maintenance %+v", summary.CurrentMaintenance)
	}
	if summary.NextMaintenance == nil || summary.NextMaintenance.Title != "soon" {
		t.Fatalf("unexpected next maintenance %+v", summary.NextMaintenance)
	}
}

func TestPublicTimelineLimitsAndEmbeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApp(t, "API")
	inc, _ := f.svc.CreateIncident(ctx, f.owner, CreateIncidentInput{AppID: app.ID, Title: "Outage"})
	for i := 0; i < 3; i++ {
		if _, err := f.svc.CreateLog(ctx, f.owner, inc.ID, LogInput{Message: "update"}); err != nil {
			t.Fatalf("log: %v", err)
		}
	}

	entries, err := f.svc.PublicTimeline(ctx, f.org.ID, 2)
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected limit to apply, got %d", len(entries))
	}
	if entries[0].Incident == nil || entries[0].Incident.Title != "Outage" || entries[0].Incident.Application == nil || entries[0].Incident.Application.Name != "API" {
		t.Fatalf("expected incident and app embedded, got %+v", entries[0].Incident)
	}

	if got := clampLimit(0); got != DefaultTimelineLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := clampLimit(500); got != MaxTimelineLimit {
		t.Fatalf("expected capped limit, got %d", got)
	}
}

func TestPublicOverviewAndUnknownOrg(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createApp(t, "API")
	f.createApp(t, "Web")

	overview, err := f.svc.PublicOverview(ctx, f.org.ID)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.Organization.Name != "Acme" || len(overview.Services) != 2 {
		t.Fatalf("unexpected overview %+v", overview)
	}
	if overview.RecentTimeline == nil || overview.IncidentsSummary.ActiveIncidents == nil {
		t.Fatalf("expected empty slices rather than nil")
	}

	orgs, err := f.svc.PublicOrganizations(ctx)
	if err != nil || len(orgs) != 1 || orgs[0].ID != f.org.ID {
		t.Fatalf("unexpected public orgs %v %v", orgs, err)
	}

	if _, err := f.svc.PublicServices(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown org, got %v", err)
	}
}
