package memory

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	"github.com/google/uuid"
)

type ApplicationRepository struct {
	base baseMemoryRepo[domain.Application]
}

func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{
		base: newBaseMemoryRepo("application", func(r *domain.Application) *domain.RecordMeta { return &r.RecordMeta }),
	}
}

var _ store.ApplicationRepository = (*ApplicationRepository)(nil)

func (r *ApplicationRepository) Create(ctx context.Context, record *domain.Application) error {
	return r.base.create(ctx, record)
}

func (r *ApplicationRepository) Update(ctx context.Context, record *domain.Application) error {
	return r.base.update(ctx, record)
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *ApplicationRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Application], error) {
	return r.base.list(ctx, opts)
}

func (r *ApplicationRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *ApplicationRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.Application, error) {
	return r.base.all(ctx, func(a *domain.Application) bool { return a.OrgID == orgID })
}
