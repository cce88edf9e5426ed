package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-statuspage/pkg/domain"
	"github.com/goliatone/go-statuspage/pkg/interfaces/store"
	"github.com/google/uuid"
)

type baseMemoryRepo[T any] struct {
	mu        sync.RWMutex
	records   map[uuid.UUID]T
	extract   func(*T) *domain.RecordMeta
	entityStr string
	now       func() time.Time
}

func newBaseMemoryRepo[T any](entity string, extract func(*T) *domain.RecordMeta) baseMemoryRepo[T] {
	return baseMemoryRepo[T]{
		records:   make(map[uuid.UUID]T),
		extract:   extract,
		entityStr: entity,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (r *baseMemoryRepo[T]) create(ctx context.Context, record *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := r.extract(record)
	base.EnsureID()
	now := r.now()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
	r.records[base.ID] = *record
	return nil
}

func (r *baseMemoryRepo[T]) update(ctx context.Context, record *T) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	base := r.extract(record)
	if base.ID == uuid.Nil {
		return store.ErrNotFound
	}
	current, ok := r.records[base.ID]
	if !ok || !r.extract(&current).DeletedAt.IsZero() {
		return store.ErrNotFound
	}
	base.UpdatedAt = r.now()
	r.records[base.ID] = *record
	return nil
}

func (r *baseMemoryRepo[T]) getByID(ctx context.Context, id uuid.UUID, includeDeleted bool) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	base := r.extract(&record)
	if !includeDeleted && !base.DeletedAt.IsZero() {
		return nil, store.ErrNotFound
	}
	copy := record
	return &copy, nil
}

func (r *baseMemoryRepo[T]) list(ctx context.Context, opts store.ListOptions) (store.ListResult[T], error) {
	return r.listWhere(ctx, opts, nil)
}

// listWhere applies match before pagination so totals reflect the filter.
func (r *baseMemoryRepo[T]) listWhere(ctx context.Context, opts store.ListOptions, match func(*T) bool) (store.ListResult[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var filtered []T
	for _, record := range r.records {
		base := r.extract(&record)
		if !opts.IncludeSoftDeleted && !base.DeletedAt.IsZero() {
			continue
		}
		if !opts.Since.IsZero() && base.CreatedAt.Before(opts.Since) {
			continue
		}
		if !opts.Until.IsZero() && base.CreatedAt.After(opts.Until) {
			continue
		}
		if match != nil && !match(&record) {
			continue
		}
		filtered = append(filtered, record)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		a, b := r.extract(&filtered[i]).CreatedAt, r.extract(&filtered[j]).CreatedAt
		if opts.Newest {
			return a.After(b)
		}
		return a.Before(b)
	})

	total := len(filtered)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	result := store.ListResult[T]{
		Items: filtered[start:end],
		Total: total,
	}
	return result, nil
}

func (r *baseMemoryRepo[T]) all(ctx context.Context, match func(*T) bool) ([]T, error) {
	result, err := r.listWhere(ctx, store.ListOptions{}, match)
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func (r *baseMemoryRepo[T]) softDelete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return store.ErrNotFound
	}
	base := r.extract(&record)
	if !base.DeletedAt.IsZero() {
		return store.ErrNotFound
	}
	base.DeletedAt = r.now()
	r.records[id] = record
	return nil
}
