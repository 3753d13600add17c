package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pulseboard/internal/identity"
	"pulseboard/pkg/platform/sentinel"
	"pulseboard/pkg/requestcontext"
)

// Memory keeps principals in memory for unit tests and local wiring.
type Memory struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*identity.Principal
	byEmail map[string]uuid.UUID
	seq     map[uuid.UUID]uint64
	nextSeq uint64
}

func NewMemory() *Memory {
	return &Memory{
		byID:    make(map[uuid.UUID]*identity.Principal),
		byEmail: make(map[string]uuid.UUID),
		seq:     make(map[uuid.UUID]uint64),
	}
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (m *Memory) Create(_ context.Context, p *identity.Principal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := emailKey(p.Email)
	if _, exists := m.byEmail[key]; exists {
		return sentinel.ErrConflict
	}
	clone := *p
	m.byID[p.ID] = &clone
	m.byEmail[key] = p.ID
	m.nextSeq++
	m.seq[p.ID] = m.nextSeq
	return nil
}

func (m *Memory) FindByEmail(_ context.Context, email string) (*identity.Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byEmail[emailKey(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *m.byID[id]
	return &clone, nil
}

func (m *Memory) FindByID(_ context.Context, id uuid.UUID) (*identity.Principal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *Memory) List(_ context.Context, filter Filter, limit, offset int) ([]*identity.Principal, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*identity.Principal, 0, len(m.byID))
	for _, p := range m.byID {
		if filter.Sector != "" && !strings.EqualFold(p.Sector, filter.Sector) {
			continue
		}
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		clone := *p
		matched = append(matched, &clone)
	}
	// Insertion sequence breaks timestamp ties so creation order is stable.
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return m.seq[matched[i].ID] < m.seq[matched[j].ID]
	})
	total := len(matched)
	if offset >= total {
		return []*identity.Principal{}, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (m *Memory) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.Active = active
	p.UpdatedAt = requestcontext.Now(ctx)
	return nil
}
