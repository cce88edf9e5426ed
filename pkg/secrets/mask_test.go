package secrets

import (
	"strings"
	"testing"
)

func TestMaskStringHidesMiddle(t *testing.T) {
	masked := MaskString("supersecretvalue")
	if masked == "supersecretvalue" || strings.Contains(masked, "secret") {
		t.Fatalf("expected value to be masked, got %s", masked)
	}
	if MaskString("") != "" {
		t.Fatalf("expected empty input to stay empty")
	}
}

func TestMaskEmailKeepsDomain(t *testing.T) {
	masked := MaskEmail("alice.smith@example.com")
	if !strings.HasSuffix(masked, "@example.com") {
		t.Fatalf("expected domain preserved, got %s", masked)
	}
	if strings.Contains(masked, "alice.smith") {
		t.Fatalf("expected local part masked, got %s", masked)
	}
	if got := MaskEmail("nodomain"); got == "nodomain" {
		t.Fatalf("expected bare value masked, got %s", got)
	}
}

func TestMaskFieldsWalksNestedMaps(t *testing.T) {
	out := MaskFields(map[string]any{
		"host": "smtp.example.com",
		"auth": map[string]any{
			"jwt_secret": "topsecretkey",
			"issuer":     "statuspage",
		},
		"smtp_password": "hunter22",
	})
	if out["host"] != "smtp.example.com" {
		t.Fatalf("expected host untouched, got %v", out["host"])
	}
	auth, ok := out["auth"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map, got %T", out["auth"])
	}
	if auth["jwt_secret"] == "topsecretkey" {
		t.Fatalf("expected nested secret masked")
	}
	if auth["issuer"] != "statuspage" {
		t.Fatalf("expected issuer untouched, got %v", auth["issuer"])
	}
	if out["smtp_password"] == "hunter22" {
		t.Fatalf("expected suffixed secret masked")
	}
	if MaskFields(nil) != nil {
		t.Fatalf("expected nil for empty input")
	}
}
