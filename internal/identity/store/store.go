// Package store persists principals.
package store

import (
	"context"

	"github.com/google/uuid"

	"pulseboard/internal/identity"
)

// Filter narrows a principal listing. Zero values match everything.
type Filter struct {
	Sector string
	Active *bool
}

// Store is the persistence port for principals. Create returns
// sentinel.ErrConflict when the email is already registered; lookups that
// miss return sentinel.ErrNotFound.
type Store interface {
	Create(ctx context.Context, p *identity.Principal) error
	FindByEmail(ctx context.Context, email string) (*identity.Principal, error)
	FindByID(ctx context.Context, id uuid.UUID) (*identity.Principal, error)
	List(ctx context.Context, filter Filter, limit, offset int) ([]*identity.Principal, int, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}
