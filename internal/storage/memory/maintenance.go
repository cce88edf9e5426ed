package memory

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	"github.com/google/uuid"
)

type MaintenanceRepository struct {
	base baseMemoryRepo[domain.Maintenance]
}

func NewMaintenanceRepository() *MaintenanceRepository {
	return &MaintenanceRepository{
		base: newBaseMemoryRepo("maintenance", func(r *domain.Maintenance) *domain.RecordMeta { return &r.RecordMeta }),
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
	return r.base.all(ctx, func(m *domain.Maintenance) bool { return m.OrgID == orgID })
}
