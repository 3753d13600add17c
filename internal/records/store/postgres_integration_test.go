//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"pulseboard/internal/records"
	"pulseboard/internal/records/store"
	"pulseboard/pkg/platform/sentinel"
	"pulseboard/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres[*records.MarketingRecord]
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB, store.MarketingMapper())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "marketing_data"))
}

func newMarketingRow(date records.Date, channel string) *records.MarketingRecord {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &records.MarketingRecord{
		Meta: records.Meta{
			ID:        uuid.New(),
			OwnerID:   uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		DateRef:     date,
		Channel:     channel,
		Campaign:    "brand",
		Product:     "pro",
		Investment:  1500,
		Impressions: 80000,
		Clicks:      3200,
		Conversions: 160,
		Leads:       640,
		Sales:       64,
		Revenue:     12800,
	}
}

func (s *PostgresStoreSuite) TestInsertAndFindRoundTrip() {
	ctx := context.Background()
	rec := newMarketingRow(records.NewDate(2026, time.March, 1), "paid_search")
	s.Require().NoError(s.store.Insert(ctx, rec))

	got, err := s.store.FindByID(ctx, rec.ID)
	s.Require().NoError(err)
	s.Equal(rec.ID, got.ID)
	s.Equal(rec.OwnerID, got.OwnerID)
	s.Equal("2026-03-01", got.DateRef.String())
	s.Equal(rec.Channel, got.Channel)
	s.Equal(rec.Investment, got.Investment)
	s.Equal(rec.Leads, got.Leads)

	byKey, err := s.store.FindByKey(ctx, rec.NaturalKey())
	s.Require().NoError(err)
	s.Equal(rec.ID, byKey.ID)
}

// TestConcurrentNaturalKeyConflict verifies that concurrent inserts of the
// same reporting row resolve to exactly one winner at the unique index.
func (s *PostgresStoreSuite) TestConcurrentNaturalKeyConflict() {
	ctx := context.Background()
	date := records.NewDate(2026, time.March, 1)
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount atomic.Int32
	var conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			rec := newMarketingRow(date, "paid_search")
			err := s.store.Insert(ctx, rec)
			if err == nil {
				successCount.Add(1)
			} else if errors.Is(err, sentinel.ErrConflict) {
				conflictCount.Add(1)
			}
		}()
	}

	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one insert should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load())

	_, total, err := s.store.List(ctx, store.Filter{}, store.Page{Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)
}

func (s *PostgresStoreSuite) TestUpdateMissingReturnsNotFound() {
	rec := newMarketingRow(records.NewDate(2026, time.March, 1), "email")
	err := s.store.Update(context.Background(), rec)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeleteFreesNaturalKey() {
	ctx := context.Background()
	rec := newMarketingRow(records.NewDate(2026, time.March, 1), "email")
	s.Require().NoError(s.store.Insert(ctx, rec))
	s.Require().NoError(s.store.Delete(ctx, rec.ID))

	_, err := s.store.FindByID(ctx, rec.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	again := newMarketingRow(records.NewDate(2026, time.March, 1), "email")
	s.Require().NoError(s.store.Insert(ctx, again))
}

func (s *PostgresStoreSuite) TestListWindowAndPaging() {
	ctx := context.Background()
	for _, day := range []int{1, 2, 3} {
		rec := newMarketingRow(records.NewDate(2026, time.March, day), "paid_search")
		rec.Campaign = "brand"
		rec.Product = uuid.NewString()
		s.Require().NoError(s.store.Insert(ctx, rec))
	}

	from := records.NewDate(2026, time.March, 2)
	items, total, err := s.store.List(ctx, store.Filter{From: &from}, store.Page{Limit: 10})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Require().Len(items, 2)
	// newest first
	s.Equal("2026-03-03", items[0].DateRef.String())
	s.Equal("2026-03-02", items[1].DateRef.String())

	items, total, err = s.store.List(ctx, store.Filter{}, store.Page{Limit: 2, Offset: 2})
	s.Require().NoError(err)
	s.Equal(3, total)
	s.Require().Len(items, 1)
	s.Equal("2026-03-01", items[0].DateRef.String())
}
