package bunrepo

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type MaintenanceRepository struct {
	base baseRepository[domain.Maintenance]
}

func NewMaintenanceRepository(db *bun.DB) *MaintenanceRepository {
	handlers := repository.ModelHandlers[*domain.Maintenance]{
		NewRecord:          func() *domain.Maintenance { return &domain.Maintenance{} },
		GetID:              func(r *domain.Maintenance) uuid.UUID { return r.ID },
		SetID:              func(r *domain.Maintenance, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(r *domain.Maintenance) string { return r.ID.String() },
	}
	return &MaintenanceRepository{
		base: newBaseRepository[domain.Maintenance](db, handlers, func(r *domain.Maintenance) *domain.RecordMeta { return &r.RecordMeta }),
	}
}

var _ store.MaintenanceRepository = (*MaintenanceRepository)(nil)

func (r *MaintenanceRepository) Create(ctx context.Context, record *domain.Maintenance) error {
	return r.base.create(ctx, record)
}

func (r *MaintenanceRepository) Update(ctx context.Context, record *domain.Maintenance) error {
	return r.base.update(ctx, record)
}

func (r *MaintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Maintenance, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *MaintenanceRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Maintenance], error) {
	return r.base.list(ctx, opts)
}

func (r *MaintenanceRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *MaintenanceRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.Maintenance, error) {
	return r.base.all(ctx, withColumn("org_id", orgID))
}
