package bunrepo

import (
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func withID(id uuid.UUID) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id = ?", id)
	}
}

func withoutDeleted() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("deleted_at IS NULL")
	}
}

func withColumn(column string, value any) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("? = ?", bun.Ident(column), value)
	}
}

func withIDs(ids []uuid.UUID) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("id IN (?)", bun.In(ids))
	}
}

func withListOptions(opts store.ListOptions) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if opts.Limit > 0 {
			q = q.Limit(opts.Limit)
		}
		if opts.Offset > 0 {
			q = q.Offset(opts.Offset)
		}
		if !opts.IncludeSoftDeleted {
			q = q.Where("deleted_at IS NULL")
		}
		if !opts.Since.IsZero() {
			q = q.Where("created_at >= ?", opts.Since)
		}
		if !opts.Until.IsZero() {
			q = q.Where("created_at <= ?", opts.Until)
		}
		if opts.Newest {
			return q.Order("created_at DESC")
		}
		return q.Order("created_at ASC")
	}
}
