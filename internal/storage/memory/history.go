package memory

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	"github.com/google/uuid"
)

type AppStatusHistoryRepository struct {
	base baseMemoryRepo[domain.AppStatusHistory]
}

func NewAppStatusHistoryRepository() *AppStatusHistoryRepository {
	return &AppStatusHistoryRepository{
		base: newBaseMemoryRepo("app_status_history", func(r *domain.AppStatusHistory) *domain.RecordMeta { return &r.RecordMeta }),
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
	return r.base.listWhere(ctx, opts, func(h *domain.AppStatusHistory) bool { return h.AppID == appID })
}
