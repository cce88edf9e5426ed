package statuspage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/events"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	"github.com/goliatone/go-statuspage/pkg/notify"
	"github.com/goliatone/go-statuspage/pkg/storage"
)

type emission struct {
	orgID    string
	kind     events.Kind
	payload  any
	actor    string
	settings events.EmitSettings
}

type recordingPublisher struct {
	mu    sync.Mutex
	items []emission
}

func (p *recordingPublisher) Emit(_ context.Context, orgID string, kind events.Kind, payload any, actor string, opts ...events.EmitOption) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, emission{orgID: orgID, kind: kind, payload: payload, actor: actor, settings: events.Collect(opts...)})
}

func (p *recordingPublisher) kinds() []events.Kind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Kind, 0, len(p.items))
	for _, item := range p.items {
		out = append(out, item.kind)
	}
	return out
}

func (p *recordingPublisher) last() emission {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.items[len(p.items)-1]
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = nil
}

type recordingInvalidator struct {
	orgs []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, orgID string) error {
	r.orgs = append(r.orgs, orgID)
	return nil
}

type fixture struct {
	svc       *Service
	store     storage.Providers
	events    *recordingPublisher
	directory *recordingInvalidator
	now       time.Time
	owner     auth.Actor
	org       *domain.Organization
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:     storage.NewMemoryProviders(),
		events:    &recordingPublisher{},
		directory: &recordingInvalidator{},
		now:       time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		owner:     auth.Actor{UserID: "owner-1", Email: "owner@example.com", Name: "Olive Owner"},
	}
	svc, err := New(Dependencies{
		Store:     f.store,
		Events:    f.events,
		Directory: f.directory,
		Now:       func() time.Time { return f.now },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	f.svc = svc
	org, err := svc.CreateOrganization(context.Background(), f.owner, CreateOrganizationInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("create org: %v", err)
	}
	f.org = org
	return f
}

func (f *fixture) addMember(t *testing.T, actor auth.Actor, role string) {
	t.Helper()
	ctx := context.Background()
	invite, err := f.svc.Invite(ctx, f.owner, f.org.ID, InviteInput{Email: actor.Email, Role: role})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if _, err := f.svc.Join(ctx, actor, invite.Code); err != nil {
		t.Fatalf("join: %v", err)
	}
}

func (f *fixture) createApp(t *testing.T, name string) *domain.Application {
	t.Helper()
	app, err := f.svc.CreateApp(context.Background(), f.owner, CreateAppInput{OrgID: f.org.ID, Name: name})
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	return app
}

func strPtr(s string) *string { return &s }

func TestCreateOrganizationMakesCreatorOwner(t *testing.T) {
	f := newFixture(t)
	m, err := f.store.Memberships.GetByOrgAndUser(context.Background(), f.org.ID, f.owner.UserID)
	if err != nil {
		t.Fatalf("membership: %v", err)
	}
	if m.Role != domain.RoleOwner || m.Email != f.owner.Email {
		t.Fatalf("unexpected membership %+v", m)
	}
	orgs, err := f.svc.ListOrganizations(context.Background(), f.owner)
	if err != nil || len(orgs) != 1 || orgs[0].Name != "Acme" {
		t.Fatalf("unexpected orgs %v %v", orgs, err)
	}
	if _, err := f.svc.CreateOrganization(context.Background(), f.owner, CreateOrganizationInput{Name: " "}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.svc.CreateOrganization(context.Background(), auth.Actor{}, CreateOrganizationInput{Name: "x"}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestInviteAndJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	invite, err := f.svc.Invite(ctx, f.owner, f.org.ID, InviteInput{Email: "Bob@Example.com"})
	if err != nil {
		t.Fatalf("invite: %v", err)
	}
	if invite.Role != domain.RoleMember || invite.Email != "bob@example.com" {
		t.Fatalf("unexpected invite %+v", invite)
	}
	if !invite.ExpiresAt.Equal(f.now.Add(InviteTTL)) {
		t.Fatalf("expected 7 day expiry, got %s", invite.ExpiresAt)
	}

	bob := auth.Actor{UserID: "bob", Name: "Bob"}
	m, err := f.svc.Join(ctx, bob, invite.Code)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if m.Email != "bob@example.com" || m.Role != domain.RoleMember {
		t.Fatalf("unexpected membership %+v", m)
	}
	if len(f.directory.orgs) != 1 || f.directory.orgs[0] != f.org.ID.String() {
		t.Fatalf("expected directory invalidation, got %v", f.directory.orgs)
	}
	if _, err := f.svc.Join(ctx, bob, invite.Code); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected used invite to be gone, got %v", err)
	}

	again, _ := f.svc.Invite(ctx, f.owner, f.org.ID, InviteInput{Email: "bob@example.com"})
	m2, err := f.svc.Join(ctx, bob, again.Code)
	if err != nil || m2.ID != m.ID {
		t.Fatalf("expected joining twice to return existing membership, got %v %v", m2, err)
	}

	if _, err := f.svc.Invite(ctx, bob, f.org.ID, InviteInput{Email: "eve@example.com"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected members to be unable to invite, got %v", err)
	}
	if _, err := f.svc.Invite(ctx, f.owner, f.org.ID, InviteInput{Email: "nope"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected invalid email to fail, got %v", err)
	}
	if _, err := f.svc.Invite(ctx, f.owner, f.org.ID, InviteInput{Email: "a@b.co", Role: "admin"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected invalid role to fail, got %v", err)
	}
}

func TestJoinRejectsAndDeletesExpiredInvite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	invite, _ := f.svc.Invite(ctx, f.owner, f.org.ID, InviteInput{Email: "late@example.com"})

	f.now = f.now.Add(InviteTTL + time.Minute)
	if _, err := f.svc.GetInvite(ctx, invite.Code); !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("expected GetInvite to reject, got %v", err)
	}
	if _, err := f.svc.Join(ctx, auth.Actor{UserID: "late"}, invite.Code); !errors.Is(err, ErrInviteExpired) {
		t.Fatalf("expected ErrInviteExpired, got %v", err)
	}
	if _, err := f.store.Invites.GetByCode(ctx, invite.Code); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected expired invite to be deleted, got %v", err)
	}
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	carol := auth.Actor{UserID: "carol", Email: "carol@example.com"}
	f.addMember(t, carol, domain.RoleMember)

	if err := f.svc.RemoveMember(ctx, carol, f.org.ID, f.owner.UserID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected member removal by non-owner to fail, got %v", err)
	}
	if err := f.svc.RemoveMember(ctx, f.owner, f.org.ID, f.owner.UserID); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected last owner removal to fail, got %v", err)
	}
	if err := f.svc.RemoveMember(ctx, f.owner, f.org.ID, "carol"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	members, _ := f.svc.ListMembers(ctx, f.owner, f.org.ID)
	if len(members) != 1 {
		t.Fatalf("expected one member left, got %d", len(members))
	}
	if _, err := f.svc.ListApps(ctx, carol, f.org.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected removed member to lose access, got %v", err)
	}
}

func TestAppLifecycleEmitsAndRecordsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	app := f.createApp(t, "API")
	if app.Status != domain.AppStatusOperational {
		t.Fatalf("expected default status, got %s", app.Status)
	}
	created := f.events.last()
	if created.kind != events.KindNewApp || created.orgID != f.org.ID.String() || created.actor != "owner-1" {
		t.Fatalf("unexpected emission %+v", created)
	}
	if n := created.settings.Notice; n == nil || n.EntityName != "API" || n.OrgName != "Acme" || n.ActorName != "Olive Owner" {
		t.Fatalf("unexpected notice %+v", created.settings.Notice)
	}

	f.now = f.now.Add(time.Minute)
	updated, err := f.svc.UpdateApp(ctx, f.owner, app.ID, UpdateAppInput{Status: strPtr(domain.AppStatusMajorOutage)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != domain.AppStatusMajorOutage {
		t.Fatalf("status not updated")
	}
	last := f.events.last()
	if last.kind != events.KindUpdatedApp || last.settings.Notice.Details != "Status changed to major_outage" {
		t.Fatalf("unexpected update emission %+v", last.settings.Notice)
	}

	history, err := f.svc.AppHistory(ctx, f.owner, app.ID, HistoryFilter{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 || history[0].Status != domain.AppStatusMajorOutage {
		t.Fatalf("expected two history rows newest first, got %+v", history)
	}

	if _, err := f.svc.UpdateApp(ctx, f.owner, app.ID, UpdateAppInput{Name: strPtr("Public API")}); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if f.events.last().settings.Notice.Details != "" {
		t.Fatalf("expected no status details on rename")
	}
	history, _ = f.svc.AppHistory(ctx, f.owner, app.ID, HistoryFilter{})
	if len(history) != 2 {
		t.Fatalf("rename must not record history, got %d rows", len(history))
	}

	if err := f.svc.DeleteApp(ctx, f.owner, app.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if f.events.last().kind != events.KindDeletedApp {
		t.Fatalf("expected deleted_app emission")
	}
	if _, err := f.svc.GetApp(ctx, f.owner, app.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected deleted app to be gone, got %v", err)
	}
}

func TestAppValidationAndScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := auth.Actor{UserID: "stranger"}

	if _, err := f.svc.CreateApp(ctx, stranger, CreateAppInput{OrgID: f.org.ID, Name: "x"}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.CreateApp(ctx, f.owner, CreateAppInput{OrgID: f.org.ID, Name: "x", Status: "on_fire"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	app := f.createApp(t, "Web")
	f.events.reset()
	if _, err := f.svc.UpdateApp(ctx, f.owner, app.ID, UpdateAppInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected empty update to fail, got %v", err)
	}
	if _, err := f.svc.UpdateApp(ctx, stranger, app.ID, UpdateAppInput{Name: strPtr("y")}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(f.events.kinds()) != 0 {
		t.Fatalf("failed mutations must not emit, got %v", f.events.kinds())
	}
}

func TestIncidentOrgComesFromApp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApp(t, "API")

	inc, err := f.svc.CreateIncident(ctx, f.owner, CreateIncidentInput{AppID: app.ID, Title: "Elevated errors"})
	if err != nil {
		t.Fatalf("create incident: %v", err)
	}
	if inc.OrgID != f.org.ID || inc.Status != domain.IncidentReported || !inc.OccurredAt.Equal(f.now) {
		t.Fatalf("unexpected incident %+v", inc)
	}
	em := f.events.last()
	if em.kind != events.KindNewIncident || em.settings.Notice.Fields["application"] != "API" {
		t.Fatalf("unexpected emission %+v", em.settings.Notice)
	}

	resolved, err := f.svc.UpdateIncident(ctx, f.owner, inc.ID, UpdateIncidentInput{Status: strPtr(domain.IncidentFixed)})
	if err != nil {
		t.Fatalf("update incident: %v", err)
	}
	if resolved.ResolvedAt == nil {
		t.Fatalf("expected resolved timestamp")
	}
	em = f.events.last()
	if em.kind != events.KindUpdatedIncident || em.settings.Notice.Action != notify.ActionResolved || em.settings.Notice.Details != "Status: Fixed" {
		t.Fatalf("unexpected resolve notice %+v", em.settings.Notice)
	}

	active, _ := f.svc.ListIncidents(ctx, f.owner, f.org.ID, IncidentFilter{ActiveOnly: true})
	if len(active) != 0 {
		t.Fatalf("expected no active incidents")
	}
	if err := f.svc.DeleteIncident(ctx, f.owner, inc.ID); err != nil {
		t.Fatalf("delete incident: %v", err)
	}
	if f.events.last().kind != events.KindDeletedIncident {
		t.Fatalf("expected deleted_incident")
	}
}

func TestLogWithStatusCascadesToIncident(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApp(t, "API")
	inc, _ := f.svc.CreateIncident(ctx, f.owner, CreateIncidentInput{AppID: app.ID, Title: "Outage"})
	f.events.reset()

	entry, err := f.svc.CreateLog(ctx, f.owner, inc.ID, LogInput{Status: domain.IncidentIdentified, Message: "Root cause found"})
	if err != nil {
		t.Fatalf("create log: %v", err)
	}
	if entry.OrgID != f.org.ID {
		t.Fatalf("expected log org from incident")
	}

	kinds := f.events.kinds()
	if len(kinds) != 2 || kinds[0] != events.KindNewLog || kinds[1] != events.KindUpdatedIncident {
		t.Fatalf("unexpected emissions %v", kinds)
	}
	logEmission := f.events.items[0]
	if n := logEmission.settings.Notice; n.EntityName != "Status update for Outage" || n.Details != "Update: Root cause found" {
		t.Fatalf("unexpected log notice %+v", n)
	}
	if !f.events.items[1].settings.Silent {
		t.Fatalf("expected cascaded incident update to skip email")
	}

	stored, _ := f.svc.GetIncident(ctx, f.owner, inc.ID)
	if stored.Status != domain.IncidentIdentified {
		t.Fatalf("expected incident status to follow log, got %s", stored.Status)
	}

	f.events.reset()
	if _, err := f.svc.CreateLog(ctx, f.owner, inc.ID, LogInput{Message: "Still working"}); err != nil {
		t.Fatalf("create log: %v", err)
	}
	if kinds := f.events.kinds(); len(kinds) != 1 {
		t.Fatalf("expected only new_log without status change, got %v", kinds)
	}

	logs, _ := f.svc.ListLogs(ctx, f.owner, inc.ID)
	if len(logs) != 2 {
		t.Fatalf("expected two logs, got %d", len(logs))
	}
	if _, err := f.svc.UpdateLog(ctx, f.owner, inc.ID, entry.ID, UpdateLogInput{Message: strPtr("Root cause: DNS")}); err != nil {
		t.Fatalf("update log: %v", err)
	}
	if f.events.last().kind != events.KindUpdatedLog {
		t.Fatalf("expected updated_log")
	}
	if _, err := f.svc.GetLog(ctx, f.owner, uuid.New(), entry.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected log under other incident to be rejected, got %v", err)
	}
	if err := f.svc.DeleteLog(ctx, f.owner, inc.ID, entry.ID); err != nil {
		t.Fatalf("delete log: %v", err)
	}
	if last := f.events.last(); last.kind != events.KindDeletedLog {
		t.Fatalf("expected deleted_log, got %s", last.kind)
	}
}

func TestMaintenanceWindowValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	app := f.createApp(t, "DB")
	start := f.now.Add(time.Hour)

	if _, err := f.svc.CreateMaintenance(ctx, f.owner, CreateMaintenanceInput{AppID: app.ID, Title: "Upgrade", StartsAt: start, EndsAt: start}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected end after start, got %v", err)
	}
	m, err := f.svc.CreateMaintenance(ctx, f.owner, CreateMaintenanceInput{AppID: app.ID, Title: "Upgrade", StartsAt: start, EndsAt: start.Add(time.Hour)})
	if err != nil {
		t.Fatalf("create maintenance: %v", err)
	}
	em := f.events.last()
	if em.kind != events.KindNewMaintenance || em.settings.Notice.Details == "" {
		t.Fatalf("expected schedule details, got %+v", em.settings.Notice)
	}

	earlier := start.Add(2 * time.Hour)
	if _, err := f.svc.UpdateMaintenance(ctx, f.owner, m.ID, UpdateMaintenanceInput{StartsAt: &earlier}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected start after end to fail, got %v", err)
	}
	title := "DB upgrade"
	if _, err := f.svc.UpdateMaintenance(ctx, f.owner, m.ID, UpdateMaintenanceInput{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, _ := f.svc.ListMaintenance(ctx, f.owner, f.org.ID, app.ID)
	if len(list) != 1 || list[0].Title != "DB upgrade" {
		t.Fatalf("unexpected list %+v", list)
	}
	if err := f.svc.DeleteMaintenance(ctx, f.owner, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if f.events.last().kind != events.KindDeletedMaintenance {
		t.Fatalf("expected deleted_maintenance")
	}
}

func TestNewRequiresRepositories(t *testing.T) {
	if _, err := New(Dependencies{}); err == nil {
		t.Fatalf("expected error without repositories")
	}
	if _, err := ParseID("app_id", "nope"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
