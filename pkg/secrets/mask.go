package secrets

import (
	"fmt"
	"strings"

	masker "github.com/goliatone/go-masker"
)

const maskRule = "preserveEnds(2,2)"

var defaultSecretFields = []string{
	"password", "secret", "token", "access_token",
	"api_key", "access_key_id", "secret_access_key",
	"jwt_secret", "signing_key", "dsn", "url",
}

func init() {
	for _, field := range defaultSecretFields {
		masker.Default.RegisterMaskField(field, maskRule)
	}
}

// IsSecretField reports whether values under key must never be logged in clear.
func IsSecretField(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	for _, field := range defaultSecretFields {
		if key == field || strings.HasSuffix(key, "_"+field) {
			return true
		}
	}
	return false
}

// MaskString hides the middle of value, keeping two runes on each end.
func MaskString(value string) string {
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String(maskRule, value); err == nil && masked != value {
		return masked
	}
	runes := []rune(value)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return string(runes[:2]) + strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-2:])
}

// MaskEmail masks the local part of an address and keeps the domain readable.
func MaskEmail(address string) string {
	address = strings.TrimSpace(address)
	at := strings.LastIndex(address, "@")
	if at <= 0 {
		return MaskString(address)
	}
	return MaskString(address[:at]) + address[at:]
}

// MaskFields returns a copy of values where secret keys are masked.
// Nested maps are walked.
func MaskFields(values map[string]any) map[string]any {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]any, len(values))
	for key, value := range values {
		switch v := value.(type) {
		case map[string]any:
			out[key] = MaskFields(v)
		case nil:
			out[key] = nil
		default:
			if IsSecretField(key) {
				out[key] = MaskString(fmt.Sprint(v))
				continue
			}
			out[key] = v
		}
	}
	return out
}
