package zaplog

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
)

func TestLoggerForwardsFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core)).With(logger.F("component", "broadcaster"))

	l.Warn("delivery failed", logger.F("org_id", "org-1"), logger.F("error", errors.New("closed")))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.WarnLevel || entry.Message != "delivery failed" {
		t.Fatalf("unexpected entry %+v", entry.Entry)
	}
	ctx := entry.ContextMap()
	if ctx["component"] != "broadcaster" || ctx["org_id"] != "org-1" || ctx["error"] != "closed" {
		t.Fatalf("unexpected fields %v", ctx)
	}
}

func TestNewParsesLevel(t *testing.T) {
	l, err := New("warn", "json")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Zap().Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected info to be disabled at warn level")
	}
	l, err = New("bogus", "console")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !l.Zap().Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("expected unknown level to fall back to info")
	}
}
