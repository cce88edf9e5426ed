package bunrepo

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type OrganizationRepository struct {
	base baseRepository[domain.Organization]
}

func NewOrganizationRepository(db *bun.DB) *OrganizationRepository {
	handlers := repository.ModelHandlers[*domain.Organization]{
		NewRecord:          func() *domain.Organization { return &domain.Organization{} },
		GetID:              func(r *domain.Organization) uuid.UUID { return r.ID },
		SetID:              func(r *domain.Organization, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(r *domain.Organization) string { return r.ID.String() },
	}
	return &OrganizationRepository{
		base: newBaseRepository[domain.Organization](db, handlers, func(r *domain.Organization) *domain.RecordMeta { return &r.RecordMeta }),
	}
}

var _ store.OrganizationRepository = (*OrganizationRepository)(nil)

func (r *OrganizationRepository) Create(ctx context.Context, record *domain.Organization) error {
	return r.base.create(ctx, record)
}

func (r *OrganizationRepository) Update(ctx context.Context, record *domain.Organization) error {
	return r.base.update(ctx, record)
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *OrganizationRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Organization], error) {
	return r.base.list(ctx, opts)
}

func (r *OrganizationRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *OrganizationRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Organization, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.base.all(ctx, withIDs(ids))
}
