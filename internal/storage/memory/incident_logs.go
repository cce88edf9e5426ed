package memory

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	"github.com/google/uuid"
)

type IncidentLogRepository struct {
	base baseMemoryRepo[domain.IncidentLog]
}

func NewIncidentLogRepository() *IncidentLogRepository {
	return &IncidentLogRepository{
		base: newBaseMemoryRepo("incident_log", func(r *domain.IncidentLog) *domain.RecordMeta { return &r.RecordMeta }),
	}
}

var _ store.IncidentLogRepository = (*IncidentLogRepository)(nil)

func (r *IncidentLogRepository) Create(ctx context.Context, record *domain.IncidentLog) error {
	return r.base.create(ctx, record)
}

func (r *IncidentLogRepository) Update(ctx context.Context, record *domain.IncidentLog) error {
	return r.base.update(ctx, record)
}

func (r *IncidentLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.IncidentLog, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *IncidentLogRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.IncidentLog], error) {
	return r.base.list(ctx, opts)
}

func (r *IncidentLogRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *IncidentLogRepository) ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]domain.IncidentLog, error) {
	return r.base.all(ctx, func(l *domain.IncidentLog) bool { return l.IncidentID == incidentID })
}

func (r *IncidentLogRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, opts store.ListOptions) (store.ListResult[domain.IncidentLog], error) {
	return r.base.listWhere(ctx, opts, func(l *domain.IncidentLog) bool { return l.OrgID == orgID })
}
