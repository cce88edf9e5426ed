package bunrepo

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type MembershipRepository struct {
	base baseRepository[domain.Membership]
}

func NewMembershipRepository(db *bun.DB) *MembershipRepository {
	handlers := repository.ModelHandlers[*domain.Membership]{
		NewRecord:          func() *domain.Membership { return &domain.Membership{} },
		GetID:              func(r *domain.Membership) uuid.UUID { return r.ID },
		SetID:              func(r *domain.Membership, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(r *domain.Membership) string { return r.ID.String() },
	}
	return &MembershipRepository{
		base: newBaseRepository[domain.Membership](db, handlers, func(r *domain.Membership) *domain.RecordMeta { return &r.RecordMeta }),
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
	return r.base.first(ctx, withColumn("org_id", orgID), withColumn("user_id", userID))
}

func (r *MembershipRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.Membership, error) {
	return r.base.all(ctx, withColumn("org_id", orgID))
}

func (r *MembershipRepository) ListByUser(ctx context.Context, userID string) ([]domain.Membership, error) {
	return r.base.all(ctx, withColumn("user_id", userID))
}
