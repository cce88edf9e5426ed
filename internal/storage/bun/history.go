package bunrepo

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type AppStatusHistoryRepository struct {
	base baseRepository[domain.AppStatusHistory]
}

func NewAppStatusHistoryRepository(db *bun.DB) *AppStatusHistoryRepository {
	handlers := repository.ModelHandlers[*domain.AppStatusHistory]{
		NewRecord:          func() *domain.AppStatusHistory { return &domain.AppStatusHistory{} },
		GetID:              func(r *domain.AppStatusHistory) uuid.UUID { return r.ID },
		SetID:              func(r *domain.AppStatusHistory, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(r *domain.AppStatusHistory) string { return r.ID.String() },
	}
	return &AppStatusHistoryRepository{
		base: newBaseRepository[domain.AppStatusHistory](db, handlers, func(r *domain.AppStatusHistory) *domain.RecordMeta { return &r.RecordMeta }),
	}
}

var _ store.AppStatusHistoryRepository = (*AppStatusHistoryRepository)(nil)

func (r *AppStatusHistoryRepository) Create(ctx context.Context, record *domain.AppStatusHistory) error {
	return r.base.create(ctx, record)
}

func (r *AppStatusHistoryRepository) Update(ctx context.Context, record *domain.AppStatusHistory) error {
	return r.base.update(ctx, record)
}

func (r *AppStatusHistoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AppStatusHistory, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *AppStatusHistoryRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.AppStatusHistory], error) {
	return r.base.list(ctx, opts)
}

func (r *AppStatusHistoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *AppStatusHistoryRepository) ListByApp(ctx context.Context, appID uuid.UUID, opts store.ListOptions) (store.ListResult[domain.AppStatusHistory], error) {
	return r.base.listWhere(ctx, opts, withColumn("app_id", appID))
}
