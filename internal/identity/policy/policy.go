// Package policy is the access decision engine. Every protected operation
// funnels through HasRole and CanAccessSector; denial surfaces as a Forbidden
// error at the boundary, never as a silently empty result set.
package policy

import (
	"strings"

	"pulseboard/internal/identity"
)

// HasRole reports whether the principal's rank meets the required rank.
// Unrecognized roles rank 0 on either side and fail closed.
func HasRole(p *identity.Principal, required identity.Role) bool {
	if p == nil || !required.Valid() {
		return false
	}
	return p.Role.Rank() >= required.Rank()
}

// CanAccessSector reports whether the principal may read or write data scoped
// to the given sector.
//
// Managers are deliberately treated as multi-sector: they pass for every
// sector, same as directors. Employees pass only for their own sector,
// compared case-insensitively. Anything else is denied.
func CanAccessSector(p *identity.Principal, sector string) bool {
	if p == nil {
		return false
	}
	switch p.Role {
	case identity.RoleDirector, identity.RoleManager:
		return true
	case identity.RoleEmployee:
		return strings.EqualFold(p.Sector, sector)
	default:
		return false
	}
}
