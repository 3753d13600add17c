package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/identity"
	"pulseboard/internal/pipeline"
	"pulseboard/internal/records"
	"pulseboard/internal/records/store"
)

type stubProvider struct {
	sector string
	stats  pipeline.Stats
	err    error
}

func (p stubProvider) Sector() string { return p.sector }

func (p stubProvider) Stats(context.Context, store.Filter) (pipeline.Stats, error) {
	return p.stats, p.err
}

func TestOverviewScopesToAccessibleSectors(t *testing.T) {
	svc := New(
		stubProvider{sector: records.SectorMarketing, stats: pipeline.Stats{Sector: records.SectorMarketing, Count: 3}},
		stubProvider{sector: records.SectorSales, stats: pipeline.Stats{Sector: records.SectorSales, Count: 7}},
	)

	director := &identity.Principal{Role: identity.RoleDirector, Active: true}
	overview, err := svc.Overview(context.Background(), director, store.Filter{})
	require.NoError(t, err)
	require.Len(t, overview.Sectors, 2)
	assert.Equal(t, records.SectorMarketing, overview.Sectors[0].Sector)
	assert.Equal(t, records.SectorSales, overview.Sectors[1].Sector)

	employee := &identity.Principal{Role: identity.RoleEmployee, Sector: records.SectorSales, Active: true}
	overview, err = svc.Overview(context.Background(), employee, store.Filter{})
	require.NoError(t, err)
	require.Len(t, overview.Sectors, 1)
	assert.Equal(t, records.SectorSales, overview.Sectors[0].Sector)
	assert.Equal(t, 7, overview.Sectors[0].Count)
}

func TestOverviewPropagatesProviderErrors(t *testing.T) {
	boom := errors.New("stats backend down")
	svc := New(
		stubProvider{sector: records.SectorMarketing, err: boom},
		stubProvider{sector: records.SectorSales},
	)

	director := &identity.Principal{Role: identity.RoleDirector, Active: true}
	_, err := svc.Overview(context.Background(), director, store.Filter{})
	assert.ErrorIs(t, err, boom)
}
