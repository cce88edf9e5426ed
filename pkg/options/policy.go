package options

import (
	"strings"
	"time"

	opts "github.com/goliatone/go-options"
)

// SettingsKey is the key under organization and membership settings that
// holds email notification overrides.
const SettingsKey = "notifications"

var (
	scopeSystem = opts.NewScope("system", opts.ScopePrioritySystem, opts.WithScopeLabel("System"))
	scopeOrg    = opts.NewScope("organization", opts.ScopePriorityTenant, opts.WithScopeLabel("Organization"))
	scopeMember = opts.NewScope("member", opts.ScopePriorityUser, opts.WithScopeLabel("Member"))
)

// EmailPolicy is the effective notification preference for one member.
type EmailPolicy struct {
	Enabled       bool
	MutedEntities []string
	Locale        string
	QuietHours    QuietHours
}

// Allows reports whether an email about entityType may be sent at ts.
func (p EmailPolicy) Allows(entityType string, ts time.Time) bool {
	if !p.Enabled {
		return false
	}
	for _, muted := range p.MutedEntities {
		if strings.EqualFold(strings.TrimSpace(muted), entityType) {
			return false
		}
	}
	return !p.QuietHours.Contains(ts)
}

// PolicyDefaults seeds the system layer.
type PolicyDefaults struct {
	Enabled bool
	Locale  string
}

// PolicyResolver layers system defaults under organization and member settings.
type PolicyResolver struct {
	Defaults PolicyDefaults
}

// NewPolicyResolver returns a resolver with the given defaults. A blank locale becomes "en".
func NewPolicyResolver(defaults PolicyDefaults) PolicyResolver {
	if strings.TrimSpace(defaults.Locale) == "" {
		defaults.Locale = "en"
	}
	return PolicyResolver{Defaults: defaults}
}

// Resolve merges the notification sections of org and member settings.
// Malformed overrides fall back to the lower layer.
func (p PolicyResolver) Resolve(orgSettings, memberSettings map[string]any) (EmailPolicy, error) {
	locale := p.Defaults.Locale
	if locale == "" {
		locale = "en"
	}
	snapshots := []Snapshot{{
		Scope: scopeSystem,
		Data: map[string]any{
			"enabled":        p.Defaults.Enabled,
			"muted_entities": []any{},
			"locale":         locale,
		},
	}}
	if section := notificationSection(orgSettings); len(section) > 0 {
		snapshots = append(snapshots, Snapshot{Scope: scopeOrg, Data: section})
	}
	if section := notificationSection(memberSettings); len(section) > 0 {
		snapshots = append(snapshots, Snapshot{Scope: scopeMember, Data: section})
	}

	resolver, err := NewResolver(snapshots...)
	if err != nil {
		return EmailPolicy{}, err
	}

	policy := EmailPolicy{Enabled: p.Defaults.Enabled, Locale: locale}
	if enabled, _, err := resolver.ResolveBool("enabled"); err == nil {
		policy.Enabled = enabled
	}
	if muted, _, err := resolver.ResolveStringSlice("muted_entities"); err == nil {
		policy.MutedEntities = muted
	}
	if loc, _, err := resolver.ResolveString("locale"); err == nil && strings.TrimSpace(loc) != "" {
		policy.Locale = strings.TrimSpace(loc)
	}
	if window, _, err := resolver.ResolveMap("quiet_hours"); err == nil {
		policy.QuietHours = QuietHours{
			Start:    asString(window["start"]),
			End:      asString(window["end"]),
			Timezone: asString(window["timezone"]),
		}
	}
	return policy, nil
}

func notificationSection(settings map[string]any) map[string]any {
	if settings == nil {
		return nil
	}
	section, ok := settings[SettingsKey].(map[string]any)
	if !ok {
		return nil
	}
	return section
}

// QuietHours is a daily "15:04" window in Timezone during which email is held back.
type QuietHours struct {
	Start    string
	End      string
	Timezone string
}

// Contains reports whether ts falls inside the window. Windows may wrap midnight.
func (q QuietHours) Contains(ts time.Time) bool {
	if q.Start == "" || q.End == "" {
		return false
	}
	loc := time.UTC
	if q.Timezone != "" {
		if location, err := time.LoadLocation(q.Timezone); err == nil {
			loc = location
		}
	}
	now := ts.In(loc)
	startClock, err := time.Parse("15:04", q.Start)
	if err != nil {
		return false
	}
	endClock, err := time.Parse("15:04", q.End)
	if err != nil {
		return false
	}

	start := time.Date(now.Year(), now.Month(), now.Day(), startClock.Hour(), startClock.Minute(), 0, 0, loc)
	end := time.Date(now.Year(), now.Month(), now.Day(), endClock.Hour(), endClock.Minute(), 0, 0, loc)
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
		if now.Before(start) {
			start = start.Add(-24 * time.Hour)
			end = end.Add(-24 * time.Hour)
		}
	}
	return !now.Before(start) && now.Before(end)
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
