package storage

import (
	"context"
	"database/sql"
	"fmt"

	bunrepo "github.com/goliatone/go-statuspage/internal/storage/bun"
	"github.com/goliatone/go-statuspage/internal/storage/memory"
	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Providers exposes all repositories needed by services.
type Providers struct {
	Organizations store.OrganizationRepository
	Memberships   store.MembershipRepository
	Invites       store.InviteRepository
	Applications  store.ApplicationRepository
	AppHistory    store.AppStatusHistoryRepository
	Incidents     store.IncidentRepository
	IncidentLogs  store.IncidentLogRepository
	Maintenance   store.MaintenanceRepository
	Transaction   store.TransactionManager
}

type Option func(*Providers)

// WithTransactionManager overrides the transaction manager returned alongside repos.
func WithTransactionManager(tx store.TransactionManager) Option {
	return func(p *Providers) {
		if tx != nil {
			p.Transaction = tx
		}
	}
}

// Models lists every persisted model in creation order.
func Models() []any {
	return []any{
		(*domain.Organization)(nil),
		(*domain.Membership)(nil),
		(*domain.Invite)(nil),
		(*domain.Application)(nil),
		(*domain.AppStatusHistory)(nil),
		(*domain.Incident)(nil),
		(*domain.IncidentLog)(nil),
		(*domain.Maintenance)(nil),
	}
}

// NewMemoryProviders returns repositories backed by in-memory maps.
func NewMemoryProviders(opts ...Option) Providers {
	providers := Providers{
		Organizations: memory.NewOrganizationRepository(),
		Memberships:   memory.NewMembershipRepository(),
		Invites:       memory.NewInviteRepository(),
		Applications:  memory.NewApplicationRepository(),
		AppHistory:    memory.NewAppStatusHistoryRepository(),
		Incidents:     memory.NewIncidentRepository(),
		IncidentLogs:  memory.NewIncidentLogRepository(),
		Maintenance:   memory.NewMaintenanceRepository(),
		Transaction:   &store.NopTransactionManager{},
	}
	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// NewBunProviders wires Bun-backed repositories using go-repository-bun.
// The caller is responsible for creating the *bun.DB instance (potentially
// via go-persistence-bun) and managing its lifecycle.
func NewBunProviders(db *bun.DB, opts ...Option) Providers {
	if db == nil {
		panic("storage: bun DB is required")
	}

	// Register models so go-persistence-bun migrations can pick them up.
	persistence.RegisterModel(Models()...)

	providers := Providers{
		Organizations: bunrepo.NewOrganizationRepository(db),
		Memberships:   bunrepo.NewMembershipRepository(db),
		Invites:       bunrepo.NewInviteRepository(db),
		Applications:  bunrepo.NewApplicationRepository(db),
		AppHistory:    bunrepo.NewAppStatusHistoryRepository(db),
		Incidents:     bunrepo.NewIncidentRepository(db),
		IncidentLogs:  bunrepo.NewIncidentLogRepository(db),
		Maintenance:   bunrepo.NewMaintenanceRepository(db),
		Transaction:   &bunTxManager{db: db},
	}

	for _, opt := range opts {
		opt(&providers)
	}
	return providers
}

// OpenSQLite opens a bun DB over the pure-Go sqlite shim.
func OpenSQLite(dsn string) (*bun.DB, error) {
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	sqldb, err := sql.Open(sqliteshim.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

// CreateSchema creates missing tables for every model.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", model, err)
		}
	}
	return nil
}

type bunTxManager struct {
	db *bun.DB
}

func (m *bunTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx)
	})
}
