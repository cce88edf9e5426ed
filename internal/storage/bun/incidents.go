package bunrepo

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type IncidentRepository struct {
	base baseRepository[domain.Incident]
}

func NewIncidentRepository(db *bun.DB) *IncidentRepository {
	handlers := repository.ModelHandlers[*domain.Incident]{
		NewRecord:          func() *domain.Incident { return &domain.Incident{} },
		GetID:              func(r *domain.Incident) uuid.UUID { return r.ID },
		SetID:              func(r *domain.Incident, id uuid.UUID) { r.ID = id },
		GetIdentifier:      func() string { return "id" },
		GetIdentifierValue: func(r *domain.Incident) string { return r.ID.String() },
	}
	return &IncidentRepository{
		base: newBaseRepository[domain.Incident](db, handlers, func(r *domain.Incident) *domain.RecordMeta { return &r.RecordMeta }),
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
	return r.base.listWhere(ctx, opts, withColumn("org_id", orgID))
}
