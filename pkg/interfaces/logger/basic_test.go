package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestBasicLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	lgr := NewWithWriter(&buf, LevelWarn)

	lgr.Info("hidden")
	lgr.Warn("shown", F("org_id", "acme"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered: %q", out)
	}
	if !strings.Contains(out, "[WARN] shown org_id=acme") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestBasicLoggerWithKeepsParentFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(&buf, LevelDebug)
	child := base.With(F("component", "realtime"))

	base.Debug("base")
	child.Debug("child", F("conn", "c1"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if strings.Contains(lines[0], "component=") {
		t.Fatalf("parent logger picked up child fields: %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "child component=realtime conn=c1") {
		t.Fatalf("unexpected child line: %q", lines[1])
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": LevelDebug, "WARN": LevelWarn, "error": LevelError, "": LevelInfo}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
