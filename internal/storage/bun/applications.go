package bunrepo

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ApplicationRepository struct {
	base baseRepository[domain.Application]
}

func NewApplicationRepository(db *bun.DB) *ApplicationRepository {
	handlers := repository.ModelHandlers[*domain.Application]{
		NewRecord:          func() *domain.Application { return &domain.Application{} },
		GetID:              func(r *domain.Application) uuid.UUID { return r.ID },
		SetID:              func(r *domain.Application, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(r *domain.Application) string { return r.ID.String() },
	}
	return &ApplicationRepository{
		base: newBaseRepository[domain.Application](db, handlers, func(r *domain.Application) *domain.RecordMeta { return &r.RecordMeta }),
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
	return r.base.all(ctx, withColumn("org_id", orgID))
}
