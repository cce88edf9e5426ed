package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/interfaces/cache"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
)

// StoreDirectory resolves audiences from the organization and membership tables.
type StoreDirectory struct {
	Organizations store.OrganizationRepository
	Memberships   store.MembershipRepository
}

var _ Directory = StoreDirectory{}

func (d StoreDirectory) Audience(ctx context.Context, orgID string) (Audience, error) {
	if d.Organizations == nil || d.Memberships == nil {
		return Audience{}, ErrDirectoryRequired
	}
	id, err := uuid.Parse(strings.TrimSpace(orgID))
	if err != nil {
		return Audience{}, fmt.Errorf("notify: invalid org id %q: %w", orgID, err)
	}
	org, err := d.Organizations.GetByID(ctx, id)
	if err != nil {
		return Audience{}, fmt.Errorf("notify: load organization: %w", err)
	}
	members, err := d.Memberships.ListByOrg(ctx, id)
	if err != nil {
		return Audience{}, fmt.Errorf("notify: list members: %w", err)
	}

	audience := Audience{
		OrgID:       org.ID.String(),
		OrgName:     org.Name,
		OrgSettings: org.Settings,
		Members:     make([]Recipient, 0, len(members)),
	}
	for _, m := range members {
		audience.Members = append(audience.Members, Recipient{
			UserID:   m.UserID,
			Email:    m.Email,
			Name:     firstNonBlank(m.DisplayName, m.Email),
			Locale:   m.Locale,
			Settings: m.Settings,
		})
	}
	return audience, nil
}

// CachedDirectory memoizes audiences as JSON in a byte cache.
type CachedDirectory struct {
	Inner  Directory
	Cache  cache.Cache
	TTL    time.Duration
	Logger logger.Logger
}

var _ Directory = (*CachedDirectory)(nil)

// NewCachedDirectory wraps inner. A zero ttl defaults to 30 seconds.
func NewCachedDirectory(inner Directory, c cache.Cache, ttl time.Duration, l logger.Logger) *CachedDirectory {
	if c == nil {
		c = &cache.Nop{}
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if l == nil {
		l = &logger.Nop{}
	}
	return &CachedDirectory{Inner: inner, Cache: c, TTL: ttl, Logger: l}
}

func audienceKey(orgID string) string {
	return "statuspage:audience:" + strings.TrimSpace(orgID)
}

func (d *CachedDirectory) Audience(ctx context.Context, orgID string) (Audience, error) {
	if d == nil || d.Inner == nil {
		return Audience{}, ErrDirectoryRequired
	}
	key := audienceKey(orgID)
	if raw, ok, err := d.Cache.Get(ctx, key); err != nil {
		d.Logger.Warn("audience cache get failed", logger.F("org_id", orgID), logger.F("error", err))
	} else if ok {
		var audience Audience
		if err := json.Unmarshal(raw, &audience); err == nil {
			return audience, nil
		}
		d.Logger.Warn("audience cache entry corrupt", logger.F("org_id", orgID))
	}

	audience, err := d.Inner.Audience(ctx, orgID)
	if err != nil {
		return Audience{}, err
	}
	if raw, err := json.Marshal(audience); err == nil {
		if err := d.Cache.Set(ctx, key, raw, d.TTL); err != nil {
			d.Logger.Warn("audience cache set failed", logger.F("org_id", orgID), logger.F("error", err))
		}
	}
	return audience, nil
}

// Invalidate drops the cached audience of orgID.
func (d *CachedDirectory) Invalidate(ctx context.Context, orgID string) error {
	if d == nil || d.Cache == nil {
		return nil
	}
	return d.Cache.Delete(ctx, audienceKey(orgID))
}
