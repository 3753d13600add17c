package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"pulseboard/internal/records"
	"pulseboard/pkg/platform/sentinel"
)

// Memory is an in-memory Store used by unit tests and local development.
type Memory[T records.Record] struct {
	mu    sync.RWMutex
	items map[uuid.UUID]T
	keys  map[string]uuid.UUID
	clone func(T) T
}

// NewMemory builds a memory store. clone must deep-copy a record so callers
// never share the stored instance.
func NewMemory[T records.Record](clone func(T) T) *Memory[T] {
	return &Memory[T]{
		items: make(map[uuid.UUID]T),
		keys:  make(map[string]uuid.UUID),
		clone: clone,
	}
}

func (m *Memory[T]) Insert(_ context.Context, rec T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := rec.NaturalKey().String()
	if _, exists := m.keys[key]; exists {
		return sentinel.ErrConflict
	}
	id := rec.RecordMeta().ID
	if _, exists := m.items[id]; exists {
		return sentinel.ErrConflict
	}
	m.items[id] = m.clone(rec)
	m.keys[key] = id
	return nil
}

func (m *Memory[T]) FindByID(_ context.Context, id uuid.UUID) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var zero T
	rec, ok := m.items[id]
	if !ok {
		return zero, sentinel.ErrNotFound
	}
	return m.clone(rec), nil
}

func (m *Memory[T]) FindByKey(_ context.Context, key records.Key) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var zero T
	id, ok := m.keys[key.String()]
	if !ok {
		return zero, sentinel.ErrNotFound
	}
	return m.clone(m.items[id]), nil
}

func (m *Memory[T]) Update(_ context.Context, rec T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := rec.RecordMeta().ID
	prev, ok := m.items[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(m.keys, prev.NaturalKey().String())
	m.items[id] = m.clone(rec)
	m.keys[rec.NaturalKey().String()] = id
	return nil
}

func (m *Memory[T]) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.items[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(m.keys, rec.NaturalKey().String())
	delete(m.items, id)
	return nil
}

func (m *Memory[T]) List(ctx context.Context, filter Filter, page Page) ([]T, int, error) {
	all, err := m.ListAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	applySort(all, page)
	total := len(all)
	if page.Offset >= total {
		return []T{}, total, nil
	}
	all = all[page.Offset:]
	if page.Limit > 0 && page.Limit < len(all) {
		all = all[:page.Limit]
	}
	return all, total, nil
}

func (m *Memory[T]) ListAll(_ context.Context, filter Filter) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]T, 0, len(m.items))
	for _, rec := range m.items {
		if filter.Matches(rec) {
			out = append(out, m.clone(rec))
		}
	}
	// ID breaks full timestamp ties, matching the SQL store's ordering.
	sort.Slice(out, func(i, j int) bool {
		di, dj := out[i].Date().Time, out[j].Date().Time
		if !di.Equal(dj) {
			return di.After(dj)
		}
		mi, mj := out[i].RecordMeta(), out[j].RecordMeta()
		if !mi.CreatedAt.Equal(mj.CreatedAt) {
			return mi.CreatedAt.After(mj.CreatedAt)
		}
		return mi.ID.String() < mj.ID.String()
	})
	return out, nil
}

// applySort reorders by a metric field when one is requested; the default
// date_ref descending order from ListAll stands otherwise.
func applySort[T records.Record](items []T, page Page) {
	if page.Sort == "" || page.Sort == "date_ref" {
		if page.Sort == "date_ref" && !page.Desc {
			reverse(items)
		}
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		vi, oki := items[i].Metrics()[page.Sort]
		vj, okj := items[j].Metrics()[page.Sort]
		if !oki || !okj {
			return false
		}
		if page.Desc {
			return vi > vj
		}
		return vi < vj
	})
}

func reverse[T any](items []T) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
