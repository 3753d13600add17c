// Package identity holds the Principal model and role enumeration shared by
// the policy engine, the session resolver, and the HTTP layer.
package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is a fixed ordered enumeration. Authorization compares integer ranks,
// never role strings, so an unrecognized value ranks 0 and is always denied.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
	RoleDirector Role = "Director"
)

var roleRanks = map[Role]int{
	RoleEmployee: 1,
	RoleManager:  2,
	RoleDirector: 3,
}

// Rank returns the role's position in the hierarchy. Unknown roles rank 0.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Valid reports whether the role is one of the three recognized values.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// ParseRole normalizes a role string case-insensitively.
func ParseRole(raw string) (Role, bool) {
	for role := range roleRanks {
		if strings.EqualFold(string(role), raw) {
			return role, true
		}
	}
	return "", false
}

// Roles lists the recognized roles in rank order.
func Roles() []Role {
	return []Role{RoleEmployee, RoleManager, RoleDirector}
}

// Principal is an authenticated system user. Principals are soft-deleted
// only: Active=false is terminal in normal operation and rows are never
// removed.
type Principal struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	Sector       string    `json:"sector,omitempty"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type principalKey struct{}

// WithPrincipal stores the resolved principal in the request context. Only
// the transport layer reads it back; services receive the principal as an
// explicit parameter so call sites stay self-describing.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the principal stored by the auth middleware.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok
}
