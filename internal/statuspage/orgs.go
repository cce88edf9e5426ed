package statuspage

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-statuspage/pkg/auth"
	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/logger"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
)

// CreateOrganizationInput names a new organization.
type CreateOrganizationInput struct {
	Name     string         `json:"name"`
	Settings domain.JSONMap `json:"settings,omitempty"`
}

// InviteInput invites an email address into an organization.
type InviteInput struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CreateOrganization stores the organization and makes the caller its owner.
func (s *Service) CreateOrganization(ctx context.Context, actor auth.Actor, input CreateOrganizationInput) (*domain.Organization, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, validation("name is required")
	}
	org := &domain.Organization{
		Name:      name,
		CreatedBy: actor.UserID,
		Settings:  input.Settings,
	}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.orgs.Create(ctx, org); err != nil {
			return err
		}
		return s.members.Create(ctx, &domain.Membership{
			OrgID:       org.ID,
			UserID:      actor.UserID,
			Email:       actor.Email,
			DisplayName: actor.Name,
			Role:        domain.RoleOwner,
		})
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("organization created", logger.F("org_id", org.ID.String()), logger.F("actor_id", actor.UserID))
	return org, nil
}

// ListOrganizations returns the organizations the caller belongs to.
func (s *Service) ListOrganizations(ctx context.Context, actor auth.Actor) ([]domain.Organization, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	memberships, err := s.members.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []domain.Organization{}, nil
	}
	ids := make([]uuid.UUID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.OrgID)
	}
	return s.orgs.ListByIDs(ctx, ids)
}

// GetOrganization returns one organization the caller belongs to.
func (s *Service) GetOrganization(ctx context.Context, actor auth.Actor, orgID uuid.UUID) (*domain.Organization, error) {
	if _, err := s.membership(ctx, actor, orgID); err != nil {
		return nil, err
	}
	return s.orgs.GetByID(ctx, orgID)
}

// ListMembers returns the members of an organization.
func (s *Service) ListMembers(ctx context.Context, actor auth.Actor, orgID uuid.UUID) ([]domain.Membership, error) {
	if _, err := s.membership(ctx, actor, orgID); err != nil {
		return nil, err
	}
	return s.members.ListByOrg(ctx, orgID)
}

// Invite creates a redeemable invite code. Only owners may invite.
func (s *Service) Invite(ctx context.Context, actor auth.Actor, orgID uuid.UUID, input InviteInput) (*domain.Invite, error) {
	if _, err := s.requireOwner(ctx, actor, orgID); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(input.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validation("a valid email is required")
	}
	role := strings.TrimSpace(input.Role)
	if role == "" {
		role = domain.RoleMember
	}
	if !domain.ValidRole(role) {
		return nil, validation("role must be owner or member")
	}
	invite := &domain.Invite{
		OrgID:     orgID,
		Email:     strings.ToLower(email),
		Role:      role,
		Code:      uuid.New(),
		InvitedBy: actor.UserID,
		ExpiresAt: s.clock().Add(InviteTTL),
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, err
	}
	return invite, nil
}

// ListInvites returns pending invites of an organization.
func (s *Service) ListInvites(ctx context.Context, actor auth.Actor, orgID uuid.UUID) ([]domain.Invite, error) {
	if _, err := s.requireOwner(ctx, actor, orgID); err != nil {
		return nil, err
	}
	return s.invites.ListByOrg(ctx, orgID)
}

// GetInvite looks an invite up by code, rejecting expired ones.
func (s *Service) GetInvite(ctx context.Context, code uuid.UUID) (*domain.Invite, error) {
	invite, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if invite.Expired(s.clock()) {
		return nil, ErrInviteExpired
	}
	return invite, nil
}

// Join redeems an invite code. Expired invites are deleted and rejected.
// Joining an organization the caller already belongs to returns the
// existing membership.
func (s *Service) Join(ctx context.Context, actor auth.Actor, code uuid.UUID) (*domain.Membership, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	invite, err := s.invites.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if invite.Expired(s.clock()) {
		if err := s.invites.SoftDelete(ctx, invite.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("expired invite cleanup failed", logger.F("invite_id", invite.ID.String()), logger.F("error", err))
		}
		return nil, ErrInviteExpired
	}

	existing, err := s.members.GetByOrgAndUser(ctx, invite.OrgID, actor.UserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	membership := &domain.Membership{
		OrgID:       invite.OrgID,
		UserID:      actor.UserID,
		Email:       firstNonBlank(actor.Email, invite.Email),
		DisplayName: actor.Name,
		Role:        invite.Role,
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.members.Create(ctx, membership); err != nil {
			return err
		}
		return s.invites.SoftDelete(ctx, invite.ID)
	})
	if err != nil {
		return nil, err
	}
	s.invalidateDirectory(ctx, invite.OrgID)
	return membership, nil
}

// RemoveMember deletes a membership. Only owners may remove members, and an
// organization always keeps at least one owner.
func (s *Service) RemoveMember(ctx context.Context, actor auth.Actor, orgID uuid.UUID, userID string) error {
	if _, err := s.requireOwner(ctx, actor, orgID); err != nil {
		return err
	}
	target, err := s.members.GetByOrgAndUser(ctx, orgID, strings.TrimSpace(userID))
	if err != nil {
		return err
	}
	if target.Role == domain.RoleOwner {
		members, err := s.members.ListByOrg(ctx, orgID)
		if err != nil {
			return err
		}
		owners := 0
		for _, m := range members {
			if m.Role == domain.RoleOwner {
				owners++
			}
		}
		if owners <= 1 {
			return validation("an organization needs at least one owner")
		}
	}
	if err := s.members.SoftDelete(ctx, target.ID); err != nil {
		return err
	}
	s.invalidateDirectory(ctx, orgID)
	return nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
