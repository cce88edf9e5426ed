package memory

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	"github.com/google/uuid"
)

type MembershipRepository struct {
	base baseMemoryRepo[domain.Membership]
}

func NewMembershipRepository() *MembershipRepository {
	return &MembershipRepository{
		base: newBaseMemoryRepo("membership", func(r *domain.Membership) *domain.RecordMeta { return &r.RecordMeta }),
	}
}

var _ store.MembershipRepository = (*MembershipRepository)(nil)

func (r *MembershipRepository) Create(ctx context.Context, record *domain.Membership) error {
	return r.base.create(ctx, record)
}

func (r *MembershipRepository) Update(ctx context.Context, record *domain.Membership) error {
	return r.base.update(ctx, record)
}

func (r *MembershipRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Membership, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *MembershipRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Membership], error) {
	return r.base.list(ctx, opts)
}

func (r *MembershipRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *MembershipRepository) GetByOrgAndUser(ctx context.Context, orgID uuid.UUID, userID string) (*domain.Membership, error) {
	items, err := r.base.all(ctx, func(m *domain.Membership) bool {
		return m.OrgID == orgID && m.UserID == userID
	})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, store.ErrNotFound
	}
	return &items[0], nil
}

func (r *MembershipRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.Membership, error) {
	return r.base.all(ctx, func(m *domain.Membership) bool { return m.OrgID == orgID })
}

func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]domain.Membership, error) {
	return r.base.all(ctx, func(m *domain.Membership) bool { return m.UserID == userID })
}
