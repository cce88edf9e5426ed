package memory

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	"github.com/google/uuid"
)

type OrganizationRepository struct {
	base baseMemoryRepo[domain.Organization]
}

func NewOrganizationRepository() *OrganizationRepository {
	return &OrganizationRepository{
		base: newBaseMemoryRepo("organization", func(r *domain.Organization) *domain.RecordMeta { return &r.RecordMeta }),
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
	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	return r.base.all(ctx, func(o *domain.Organization) bool {
		_, ok := wanted[o.ID]
		return ok
	})
}
