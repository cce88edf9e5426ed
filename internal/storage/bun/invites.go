package bunrepo

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type InviteRepository struct {
	base baseRepository[domain.Invite]
}

func NewInviteRepository(db *bun.DB) *InviteRepository {
	handlers := repository.ModelHandlers[*domain.Invite]{
		NewRecord:          func() *domain.Invite { return &domain.Invite{} },
		GetID:              func(r *domain.Invite) uuid.UUID { return r.ID },
		SetID:              func(r *domain.Invite, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(r *domain.Invite) string { return r.ID.String() },
	}
	return &InviteRepository{
		base: newBaseRepository[domain.Invite](db, handlers, func(r *domain.Invite) *domain.RecordMeta { return &r.RecordMeta }),
	}
}

var _ store.InviteRepository = (*InviteRepository)(nil)

func (r *InviteRepository) Create(ctx context.Context, record *domain.Invite) error {
	return r.base.create(ctx, record)
}

func (r *InviteRepository) Update(ctx context.Context, record *domain.Invite) error {
	return r.base.update(ctx, record)
}

func (r *InviteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invite, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *InviteRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Invite], error) {
	return r.base.list(ctx, opts)
}

func (r *InviteRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *InviteRepository) GetByCode(ctx context.Context, code uuid.UUID) (*domain.Invite, error) {
	return r.base.first(ctx, withColumn("code", code))
}

func (r *InviteRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.Invite, error) {
	return r.base.all(ctx, withColumn("org_id", orgID))
}
