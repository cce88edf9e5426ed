package di

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/goliatone/go-statuspage/internal/statuspage"
	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/config"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-statuspage/pkg/logging/zaplog"
)

type chanConn struct {
	id   string
	msgs chan []byte
}

func (c *chanConn) ID() string { return c.id }

func (c *chanConn) Send(_ context.Context, payload []byte) error {
	c.msgs <- append([]byte(nil), payload...)
	return nil
}

func (c *chanConn) Close() error { return nil }

func TestContainerDeliversMutationsToSubscribers(t *testing.T) {
	ctx := context.Background()
	c, err := New(ctx, Options{Logger: &logger.Nop{}})
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	defer func() {
		if err := c.Close(ctx); err != nil {
			t.Fatalf("close: %v", err)
		}
	}()

	owner := auth.Actor{UserID: "owner-1", Email: "owner@example.com"}
	org, err := c.StatusPage.CreateOrganization(ctx, owner, statuspage.CreateOrganizationInput{Name: "Acme"})
	if err != nil {
		t.Fatalf("create org: %v", err)
	}

	conn := &chanConn{id: "conn-1", msgs: make(chan []byte, 4)}
	if err := c.Registry.Register(conn, org.ID.String()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := c.StatusPage.CreateApp(ctx, owner, statuspage.CreateAppInput{OrgID: org.ID, Name: "API"}); err != nil {
		t.Fatalf("create app: %v", err)
	}

	select {
	case raw := <-conn.msgs:
		var env struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if env.Type != "new_app" {
			t.Fatalf("expected new_app, got %s", env.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for broadcast")
	}

	if c.Tokens == nil || c.Commands == nil || c.Directory == nil {
		t.Fatalf("expected container to wire tokens, commands and directory")
	}
}

func TestContainerRejectsInvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Email.Provider = "carrier-pigeon"
	if _, err := New(context.Background(), Options{Config: cfg, Logger: &logger.Nop{}}); err == nil {
		t.Fatalf("expected invalid config to fail")
	}
}

func TestContainerDisabledNotificationsUsesNop(t *testing.T) {
	cfg := config.Defaults()
	cfg.Notifications.Enabled = false
	c, err := New(context.Background(), Options{Config: cfg, Logger: &logger.Nop{}})
	if err != nil {
		t.Fatalf("container: %v", err)
	}
	defer c.Close(context.Background())
	if c.Notifier == nil {
		t.Fatalf("expected a notifier even when disabled")
	}
	if len(c.Messengers.Describe()) == 0 {
		t.Fatalf("expected the console messenger to be registered")
	}
}

func TestNewLoggerSelectsImplementation(t *testing.T) {
	basic, err := NewLogger(config.LoggingConfig{Level: "debug", Format: "basic"})
	if err != nil {
		t.Fatalf("basic: %v", err)
	}
	if _, ok := basic.(*logger.BasicLogger); !ok {
		t.Fatalf("expected basic logger, got %T", basic)
	}
	structured, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json"})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if _, ok := structured.(*zaplog.Logger); !ok {
		t.Fatalf("expected zap logger, got %T", structured)
	}
}
