package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-statuspage/pkg/adapters"
	"github.com/goliatone/go-statuspage/pkg/options"
)

type staticDirectory struct {
	audience Audience
	err      error
	calls    int
}

func (d *staticDirectory) Audience(ctx context.Context, orgID string) (Audience, error) {
	d.calls++
	if d.err != nil {
		return Audience{}, d.err
	}
	return d.audience, nil
}

type recordingMessenger struct {
	mu       sync.Mutex
	messages []adapters.Message
	failures map[string]int
}

func (m *recordingMessenger) Name() string { return "recording" }

func (m *recordingMessenger) Capabilities() adapters.Capability {
	return adapters.Capability{Name: "recording", Channels: []string{adapters.ChannelEmail}}
}

func (m *recordingMessenger) Send(ctx context.Context, msg adapters.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	if m.failures[msg.To] > 0 {
		m.failures[msg.To]--
		return errors.New("smtp unavailable")
	}
	return nil
}

func (m *recordingMessenger) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.messages {
		out = append(out, msg.To)
	}
	return out
}

func testAudience() Audience {
	return Audience{
		OrgID:   "org-1",
		OrgName: "Acme",
		Members: []Recipient{
			{UserID: "user-1", Email: "ada@example.com", Name: "Ada"},
			{UserID: "user-2", Email: "grace@example.com", Name: "Grace"},
			{UserID: "user-3", Email: "linus@example.com", Name: "Linus", Locale: "es"},
		},
	}
}

func newTestService(t *testing.T, dir Directory, messenger adapters.Messenger, mutate func(*Dependencies)) *Service {
	t.Helper()
	deps := Dependencies{
		Directory:  dir,
		Renderer:   newTestRenderer(t),
		Messengers: adapters.NewRegistry(messenger),
		From:       "status@example.com",
		Sleep:      func(context.Context, time.Duration) error { return nil },
	}
	if mutate != nil {
		mutate(&deps)
	}
	svc, err := New(deps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

func TestDeliverExcludesActor(t *testing.T) {
	messenger := &recordingMessenger{}
	svc := newTestService(t, &staticDirectory{audience: testAudience()}, messenger, nil)

	report, err := svc.Deliver(context.Background(), incidentNotice())
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if report.Recipients != 2 || report.Sent != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	for _, to := range messenger.sentTo() {
		if to == "ada@example.com" {
			t.Fatalf("actor must not receive the notice")
		}
	}
}

func TestDeliverLocalizesPerRecipient(t *testing.T) {
	messenger := &recordingMessenger{}
	svc := newTestService(t, &staticDirectory{audience: testAudience()}, messenger, nil)

	if _, err := svc.Deliver(context.Background(), incidentNotice()); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	subjects := map[string]string{}
	for _, msg := range messenger.messages {
		subjects[msg.To] = msg.Subject
		if msg.From != "status@example.com" {
			t.Fatalf("expected from address, got %q", msg.From)
		}
	}
	if subjects["grace@example.com"] != "🚨 Incident created in Acme" {
		t.Fatalf("unexpected english subject %q", subjects["grace@example.com"])
	}
	if subjects["linus@example.com"] != "🚨 Incidente creado en Acme" {
		t.Fatalf("unexpected spanish subject %q", subjects["linus@example.com"])
	}
}

func TestDeliverSkipsWhenOnlyActor(t *testing.T) {
	messenger := &recordingMessenger{}
	dir := &staticDirectory{audience: Audience{OrgID: "org-1", Members: []Recipient{{UserID: "user-1", Email: "ada@example.com"}}}}
	svc := newTestService(t, dir, messenger, nil)

	report, err := svc.Deliver(context.Background(), incidentNotice())
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if report.Recipients != 0 || len(messenger.messages) != 0 {
		t.Fatalf("expected no sends, got %+v", report)
	}
}

func TestDeliverRetriesThenSucceeds(t *testing.T) {
	messenger := &recordingMessenger{failures: map[string]int{"grace@example.com": 2}}
	var slept []time.Duration
	svc := newTestService(t, &staticDirectory{audience: testAudience()}, messenger, func(d *Dependencies) {
		d.Sleep = func(_ context.Context, dur time.Duration) error {
			slept = append(slept, dur)
			return nil
		}
	})

	report, err := svc.Deliver(context.Background(), incidentNotice())
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if report.Sent != 2 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(slept) != 2 || slept[1] <= slept[0] {
		t.Fatalf("expected growing backoff, got %v", slept)
	}
	last := messenger.messages[len(messenger.messages)-1]
	if last.Attempt < 1 {
		t.Fatalf("expected attempt to be stamped")
	}
}

func TestDeliverCountsExhaustedRetries(t *testing.T) {
	messenger := &recordingMessenger{failures: map[string]int{"grace@example.com": 10}}
	svc := newTestService(t, &staticDirectory{audience: testAudience()}, messenger, func(d *Dependencies) {
		d.MaxAttempts = 2
	})

	report, err := svc.Deliver(context.Background(), incidentNotice())
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if report.Failed != 1 || report.Sent != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestDeliverHonorsMemberPolicy(t *testing.T) {
	audience := testAudience()
	audience.Members[1].Settings = map[string]any{
		options.SettingsKey: map[string]any{"muted_entities": []any{"incident"}},
	}
	messenger := &recordingMessenger{}
	svc := newTestService(t, &staticDirectory{audience: audience}, messenger, nil)

	report, err := svc.Deliver(context.Background(), incidentNotice())
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if report.Skipped != 1 || report.Sent != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestNotifySwallowsDirectoryError(t *testing.T) {
	messenger := &recordingMessenger{}
	dir := &staticDirectory{err: errors.New("db down")}
	svc := newTestService(t, dir, messenger, nil)

	svc.Notify(context.Background(), incidentNotice())
	if dir.calls != 1 {
		t.Fatalf("expected directory lookup")
	}
	if len(messenger.messages) != 0 {
		t.Fatalf("expected no sends")
	}
}

func TestNewValidatesDependencies(t *testing.T) {
	if _, err := New(Dependencies{}); !errors.Is(err, ErrDirectoryRequired) {
		t.Fatalf("expected ErrDirectoryRequired, got %v", err)
	}
	if _, err := New(Dependencies{Directory: &staticDirectory{}}); !errors.Is(err, ErrRendererRequired) {
		t.Fatalf("expected ErrRendererRequired, got %v", err)
	}
}

func TestRecipientsDeduplicates(t *testing.T) {
	out := Recipients([]Recipient{
		{UserID: "a", Email: "Team@Example.com"},
		{UserID: "b", Email: "team@example.com"},
		{UserID: "c", Email: ""},
		{UserID: "d", Email: "d@example.com"},
	}, "d")
	if len(out) != 1 || out[0].UserID != "a" {
		t.Fatalf("unexpected recipients %+v", out)
	}
}
