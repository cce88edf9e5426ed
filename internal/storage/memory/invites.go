package memory

import (
	"context"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	"github.com/google/uuid"
)

type InviteRepository struct {
	base baseMemoryRepo[domain.Invite]
}

func NewInviteRepository() *InviteRepository {
	return &InviteRepository{
		base: newBaseMemoryRepo("invite", func(r *domain.Invite) *domain.RecordMeta { return &r.RecordMeta }),
	}
}

var _ store.InviteRepository = (*InviteRepository)(nil)

func (r *InviteRepository) Create(ctx context.Context, record *domain.Invite) error {
	return r.base.create(ctx, record)
}

func (r *InviteRepository) Update(ctx context.Context, record *domain.Invite) error {
	return r.base.update(ctx, record)
}

func (r *InviteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invite, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *InviteRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Invite], error) {
	return r.base.list(ctx, opts)
}

func (r *InviteRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *InviteRepository) GetByCode(ctx context.Context, code uuid.UUID) (*domain.Invite, error) {
	items, err := r.base.all(ctx, func(i *domain.Invite) bool { return i.Code == code })
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, store.ErrNotFound
	}
	return &items[0], nil
}

func (r *InviteRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.Invite, error) {
	return r.base.all(ctx, func(i *domain.Invite) bool { return i.OrgID == orgID })
}
