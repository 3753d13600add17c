// Package dashboard assembles the cross-sector overview.
package dashboard

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"pulseboard/internal/identity"
	"pulseboard/internal/identity/policy"
	"pulseboard/internal/pipeline"
	"pulseboard/internal/records/store"
)

// StatsProvider is one sector's aggregate view; every pipeline service
// satisfies it.
type StatsProvider interface {
	Sector() string
	Stats(ctx context.Context, filter store.Filter) (pipeline.Stats, error)
}

// Service collects stats across the sectors a principal can access.
type Service struct {
	providers []StatsProvider
}

func New(providers ...StatsProvider) *Service {
	return &Service{providers: providers}
}

// Overview is the cross-sector aggregate for one principal.
type Overview struct {
	Sectors []pipeline.Stats `json:"sectors"`
}

// Overview gathers each accessible sector's stats concurrently. Sectors the
// principal cannot access are omitted; this is a convenience view, the
// per-sector endpoints still enforce access with an explicit denial.
func (s *Service) Overview(ctx context.Context, p *identity.Principal, filter store.Filter) (Overview, error) {
	g, ctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	collected := make([]pipeline.Stats, 0, len(s.providers))
	for _, provider := range s.providers {
		if !policy.CanAccessSector(p, provider.Sector()) {
			continue
		}
		g.Go(func() error {
			stats, err := provider.Stats(ctx, filter)
			if err != nil {
				return err
			}
			mu.Lock()
			collected = append(collected, stats)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].Sector < collected[j].Sector })
	return Overview{Sectors: collected}, nil
}
