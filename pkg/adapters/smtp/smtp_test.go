package smtp

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-statuspage/pkg/adapters"
)

func newTestAdapter(opts ...Option) *Adapter {
	a := New(nil, opts...)
	a.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestBuildMessage_HTMLOnlyDerivesText(t *testing.T) {
	a := newTestAdapter()
	headers, body := a.buildMessage("from@example.com", "to@example.com", adapters.Message{
		Subject: "Subject",
		HTML:    "<p>Hello world</p>",
	})

	if !strings.Contains(headers, "multipart/alternative") {
		t.Fatalf("expected multipart/alternative headers")
	}
	if !strings.Contains(body, "Content-Type: text/plain") {
		t.Fatalf("expected text/plain part")
	}
	if !strings.Contains(body, "Content-Type: text/html") {
		t.Fatalf("expected text/html part")
	}
	textPart, _, _ := strings.Cut(body, "Content-Type: text/html")
	if !strings.Contains(textPart, "Hello world") || strings.Contains(textPart, "<p>") {
		t.Fatalf("expected derived text content, got %s", textPart)
	}
}

func TestBuildMessage_PlainOnlyDropsHTML(t *testing.T) {
	a := newTestAdapter(WithConfig(Config{Host: "localhost", PlainOnly: true}))
	headers, body := a.buildMessage("from@example.com", "to@example.com", adapters.Message{
		Subject: "Subject",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
	})
	if !strings.Contains(headers, "Content-Type: text/plain; charset=UTF-8") {
		t.Fatalf("expected plain content type, got %s", headers)
	}
	if body != "plain body" {
		t.Fatalf("expected plain body, got %q", body)
	}
}

func TestBuildMessage_EncodesUnicodeSubject(t *testing.T) {
	a := newTestAdapter()
	headers, _ := a.buildMessage("from@example.com", "to@example.com", adapters.Message{
		Subject: "🚨 Incident created in Acme",
		Text:    "body",
	})
	if strings.Contains(headers, "🚨") {
		t.Fatalf("expected subject to be encoded, got %s", headers)
	}
	if !strings.Contains(headers, "Subject: =?utf-8?q?") {
		t.Fatalf("expected Q-encoded subject, got %s", headers)
	}
}

func TestBuildMessage_HeadersMergeAndSort(t *testing.T) {
	a := newTestAdapter(WithConfig(Config{Headers: map[string]string{"X-Env": "test", "X-Trace": "cfg"}}))
	headers, _ := a.buildMessage("from@example.com", "to@example.com", adapters.Message{
		Subject: "s",
		Text:    "b",
		Headers: map[string]string{"X-Trace": "msg", "X-Empty": ""},
	})
	if !strings.Contains(headers, "X-Trace: msg") {
		t.Fatalf("expected message header to win, got %s", headers)
	}
	if strings.Contains(headers, "X-Empty") {
		t.Fatalf("expected empty header skipped")
	}
	if strings.Index(headers, "Content-Type") > strings.Index(headers, "From") {
		t.Fatalf("expected headers sorted, got %s", headers)
	}
}

func TestSendValidatesInput(t *testing.T) {
	cases := []struct {
		name string
		a    *Adapter
		msg  adapters.Message
	}{
		{"missing host", newTestAdapter(), adapters.Message{To: "a@example.com", Text: "x"}},
		{"missing from", newTestAdapter(WithHostPort("localhost", 2525)), adapters.Message{To: "a@example.com", Text: "x"}},
		{"bad to", newTestAdapter(WithHostPort("localhost", 2525), WithFrom("ops@example.com")), adapters.Message{To: "not-an-address", Text: "x"}},
		{"empty content", newTestAdapter(WithHostPort("localhost", 2525), WithFrom("ops@example.com")), adapters.Message{To: "a@example.com"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.a.Send(context.Background(), tc.msg); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestWithConfigKeepsDefaults(t *testing.T) {
	a := New(nil, WithConfig(Config{Host: "mail.example.com"}))
	if a.cfg.Port != 587 {
		t.Fatalf("expected default port, got %d", a.cfg.Port)
	}
	if a.cfg.Timeout != 10*time.Second {
		t.Fatalf("expected default timeout, got %s", a.cfg.Timeout)
	}
}
