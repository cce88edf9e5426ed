package memory

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	"github.com/google/uuid"
)

type IncidentRepository struct {
	base baseMemoryRepo[domain.Incident]
}

func NewIncidentRepository() *IncidentRepository {
	return &IncidentRepository{
		base: newBaseMemoryRepo("incident", func(r *domain.Incident) *domain.RecordMeta { return &r.RecordMeta }),
	}
}

var _ store.IncidentRepository = (*IncidentRepository)(nil)

func (r *IncidentRepository) Create(ctx context.Context, record *domain.Incident) error {
	return r.base.create(ctx, record)
}

func (r *IncidentRepository) Update(ctx context.Context, record *domain.Incident) error {
	return r.base.update(ctx, record)
}

func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Incident, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *IncidentRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Incident], error) {
	return r.base.list(ctx, opts)
}

func (r *IncidentRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *IncidentRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, opts store.ListOptions) (store.ListResult[domain.Incident], error) {
	return r.base.listWhere(ctx, opts, func(i *domain.Incident) bool { return i.OrgID == orgID })
}
