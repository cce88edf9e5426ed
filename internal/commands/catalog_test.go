package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/domain"
)

type stubService struct {
	calls []string
	err   error
}

func (s *stubService) DeleteApp(context.Context, auth.Actor, uuid.UUID) error {
	s.calls = append(s.calls, "delete_app")
	return s.err
}

func (s *stubService) DeleteIncident(context.Context, auth.Actor, uuid.UUID) error {
	s.calls = append(s.calls, "delete_incident")
	return s.err
}

func (s *stubService) DeleteLog(context.Context, auth.Actor, uuid.UUID, uuid.UUID) error {
	s.calls = append(s.calls, "delete_log")
	return s.err
}

func (s *stubService) DeleteMaintenance(context.Context, auth.Actor, uuid.UUID) error {
	s.calls = append(s.calls, "delete_maintenance")
	return s.err
}

func (s *stubService) Join(_ context.Context, actor auth.Actor, _ uuid.UUID) (*domain.Membership, error) {
	s.calls = append(s.calls, "join")
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Membership{UserID: actor.UserID, Role: domain.RoleMember}, nil
}

func (s *stubService) RemoveMember(context.Context, auth.Actor, uuid.UUID, string) error {
	s.calls = append(s.calls, "remove_member")
	return s.err
}

func TestCatalogDispatchesToService(t *testing.T) {
	ctx := context.Background()
	svc := &stubService{}
	cat, err := NewCatalog(Dependencies{Service: svc})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	actor := auth.Actor{UserID: "user-1"}
	id := uuid.New()

	steps := []func() error{
		func() error { return cat.DeleteApp.Execute(ctx, DeleteApp{Actor: actor, ID: id}) },
		func() error { return cat.DeleteIncident.Execute(ctx, DeleteIncident{Actor: actor, ID: id}) },
		func() error { return cat.DeleteLog.Execute(ctx, DeleteLog{Actor: actor, IncidentID: id, ID: id}) },
		func() error { return cat.DeleteMaintenance.Execute(ctx, DeleteMaintenance{Actor: actor, ID: id}) },
		func() error { return cat.JoinOrganization.Execute(ctx, JoinOrganization{Actor: actor, Code: id}) },
		func() error { return cat.RemoveMember.Execute(ctx, RemoveMember{Actor: actor, OrgID: id, UserID: "user-2"}) },
	}
	for i, step := range steps {
		if err := step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if len(svc.calls) != 6 {
		t.Fatalf("expected six service calls, got %v", svc.calls)
	}
	if len(cat.Commanders()) != 6 {
		t.Fatalf("expected six commanders")
	}
}

func TestCatalogRejectsMissingActor(t *testing.T) {
	svc := &stubService{}
	cat, _ := NewCatalog(Dependencies{Service: svc})
	if err := cat.DeleteApp.Execute(context.Background(), DeleteApp{ID: uuid.New()}); !errors.Is(err, errActorRequired) {
		t.Fatalf("expected errActorRequired, got %v", err)
	}
	if err := cat.RemoveMember.Execute(context.Background(), RemoveMember{Actor: auth.Actor{UserID: "u"}}); err == nil {
		t.Fatalf("expected missing user id to fail")
	}
	if len(svc.calls) != 0 {
		t.Fatalf("expected no service calls, got %v", svc.calls)
	}
}

func TestCatalogPropagatesServiceErrors(t *testing.T) {
	boom := errors.New("boom")
	cat, _ := NewCatalog(Dependencies{Service: &stubService{err: boom}})
	err := cat.JoinOrganization.Execute(context.Background(), JoinOrganization{Actor: auth.Actor{UserID: "u"}, Code: uuid.New()})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, err := NewCatalog(Dependencies{}); err == nil {
		t.Fatalf("expected error without service")
	}
}
