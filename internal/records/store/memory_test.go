package store

import (
	"context"
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulseboard/internal/records"
	"pulseboard/pkg/platform/sentinel"
)

func newMarketingMemory() *Memory[*records.MarketingRecord] {
	return NewMemory(func(r *records.MarketingRecord) *records.MarketingRecord {
		clone := *r
		return &clone
	})
}

func marketingFixture(t *testing.T, date, channel string) *records.MarketingRecord {
	t.Helper()
	d, err := records.ParseDate(date)
	require.NoError(t, err)
	rec := &records.MarketingRecord{
		DateRef:  d,
		Channel:  channel,
		Campaign: "brand",
		Product:  "pro",
		Leads:    10,
	}
	rec.ID = uuid.New()
	rec.OwnerID = uuid.New()
	return rec
}

func TestMemoryInsertAndFind(t *testing.T) {
	ctx := context.Background()
	mem := newMarketingMemory()
	rec := marketingFixture(t, "2026-01-10", "paid_search")

	require.NoError(t, mem.Insert(ctx, rec))

	byID, err := mem.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Channel, byID.Channel)

	byKey, err := mem.FindByKey(ctx, rec.NaturalKey())
	require.NoError(t, err)
	assert.Equal(t, rec.ID, byKey.ID)

	// stored copy is isolated from the caller's instance
	rec.Leads = 999
	again, err := mem.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), again.Leads)
}

func TestMemoryInsertConflictOnNaturalKey(t *testing.T) {
	ctx := context.Background()
	mem := newMarketingMemory()

	require.NoError(t, mem.Insert(ctx, marketingFixture(t, "2026-01-10", "paid_search")))
	err := mem.Insert(ctx, marketingFixture(t, "2026-01-10", "paid_search"))
	assert.ErrorIs(t, err, sentinel.ErrConflict)

	// same channel on a different date is a distinct key
	require.NoError(t, mem.Insert(ctx, marketingFixture(t, "2026-01-11", "paid_search")))
}

func TestMemoryUpdate(t *testing.T) {
	ctx := context.Background()
	mem := newMarketingMemory()
	rec := marketingFixture(t, "2026-01-10", "paid_search")
	require.NoError(t, mem.Insert(ctx, rec))

	rec.Leads = 25
	require.NoError(t, mem.Update(ctx, rec))

	got, err := mem.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(25), got.Leads)

	missing := marketingFixture(t, "2026-02-01", "email")
	assert.ErrorIs(t, mem.Update(ctx, missing), sentinel.ErrNotFound)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	mem := newMarketingMemory()
	rec := marketingFixture(t, "2026-01-10", "paid_search")
	require.NoError(t, mem.Insert(ctx, rec))

	require.NoError(t, mem.Delete(ctx, rec.ID))
	_, err := mem.FindByID(ctx, rec.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.ErrorIs(t, mem.Delete(ctx, rec.ID), sentinel.ErrNotFound)

	// the key is free again after deletion
	require.NoError(t, mem.Insert(ctx, marketingFixture(t, "2026-01-10", "paid_search")))
}

func TestMemoryListFilterAndPage(t *testing.T) {
	ctx := context.Background()
	mem := newMarketingMemory()
	for _, date := range []string{"2026-01-01", "2026-01-02", "2026-01-03", "2026-01-04"} {
		require.NoError(t, mem.Insert(ctx, marketingFixture(t, date, "paid_search")))
	}

	from, err := records.ParseDate("2026-01-02")
	require.NoError(t, err)
	to, err := records.ParseDate("2026-01-03")
	require.NoError(t, err)

	items, total, err := mem.List(ctx, Filter{From: &from, To: &to}, Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	// newest first
	assert.Equal(t, "2026-01-03", items[0].DateRef.String())
	assert.Equal(t, "2026-01-02", items[1].DateRef.String())

	paged, total, err := mem.List(ctx, Filter{}, Page{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, paged, 2)
	assert.Equal(t, "2026-01-02", paged[0].DateRef.String())

	empty, total, err := mem.List(ctx, Filter{}, Page{Limit: 2, Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, empty)
}

// Records sharing a reference date and creation timestamp must list in the
// same order every call, matching the SQL store's ID tie-breaker.
func TestMemoryListOrderStableOnTimestampTies(t *testing.T) {
	ctx := context.Background()
	mem := newMarketingMemory()

	recs := make([]*records.MarketingRecord, 0, 4)
	for _, channel := range []string{"email", "organic", "paid_search", "social"} {
		rec := marketingFixture(t, "2026-03-01", channel)
		require.NoError(t, mem.Insert(ctx, rec))
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		return recs[i].ID.String() < recs[j].ID.String()
	})

	for i := 0; i < 20; i++ {
		listed, total, err := mem.List(ctx, Filter{}, Page{})
		require.NoError(t, err)
		require.Equal(t, 4, total)
		for j, want := range recs {
			assert.Equal(t, want.ID, listed[j].ID, "position %d", j)
		}
	}
}
