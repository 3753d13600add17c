// Package store persists sector records. One generic implementation serves
// all six sector tables; per-table column mapping is supplied by a Mapper.
package store

import (
	"context"

	"github.com/google/uuid"

	"pulseboard/internal/records"
)

// Filter narrows a listing to a reference-date window. Nil bounds are open.
type Filter struct {
	From *records.Date
	To   *records.Date
}

// Matches reports whether a record's reference date falls in the window.
func (f Filter) Matches(rec records.Record) bool {
	d := rec.Date().Time
	if f.From != nil && d.Before(f.From.Time) {
		return false
	}
	if f.To != nil && d.After(f.To.Time) {
		return false
	}
	return true
}

// Page bounds and orders a listing. Limit <= 0 means no limit. Sort names a
// metric column or date_ref; unknown fields fall back to the default
// date_ref ordering. Desc applies to the chosen sort field.
type Page struct {
	Limit  int
	Offset int
	Sort   string
	Desc   bool
}

// Store is the persistence port for one sector's records. Listings order by
// reference date descending, newest first. Lookups that miss return
// sentinel.ErrNotFound; inserts that collide on the natural key return
// sentinel.ErrConflict.
type Store[T records.Record] interface {
	Insert(ctx context.Context, rec T) error
	FindByID(ctx context.Context, id uuid.UUID) (T, error)
	FindByKey(ctx context.Context, key records.Key) (T, error)
	Update(ctx context.Context, rec T) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter Filter, page Page) ([]T, int, error)
	ListAll(ctx context.Context, filter Filter) ([]T, error)
}
