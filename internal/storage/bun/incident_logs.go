package bunrepo

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type IncidentLogRepository struct {
	base baseRepository[domain.IncidentLog]
}

func NewIncidentLogRepository(db *bun.DB) *IncidentLogRepository {
	handlers := repository.ModelHandlers[*domain.IncidentLog]{
		NewRecord:          func() *domain.IncidentLog { return &domain.IncidentLog{} },
		GetID:              func(r *domain.IncidentLog) uuid.UUID { return r.ID },
		SetID:              func(r *domain.IncidentLog, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(r *domain.IncidentLog) string { return r.ID.String() },
	}
	return &IncidentLogRepository{
		base: newBaseRepository[domain.IncidentLog](db, handlers, func(r *domain.IncidentLog) *domain.RecordMeta { return &r.RecordMeta }),
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
	return r.base.all(ctx, withColumn("incident_id", incidentID))
}

func (r *IncidentLogRepository) ListByOrg(ctx context.Context, orgID uuid.UUID, opts store.ListOptions) (store.ListResult[domain.IncidentLog], error) {
	return r.base.listWhere(ctx, opts, withColumn("org_id", orgID))
}
