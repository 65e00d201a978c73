// Package authz implements the ownership and role guard applied before
// every mutating or resource-scoped action.
package authz

import (
	"errors"

	"github.com/emergent-labs/emergent-server/internal/models"
)

// Denial reasons.
var (
	// ErrNotAdmin denies a non-admin principal an admin-only action.
	ErrNotAdmin = errors.New("authz: admin access required")
	// ErrNotOwner denies a principal access to another user's resource.
	ErrNotOwner = errors.New("authz: not resource owner")
)

// Principal is the authenticated identity attached to an inbound action.
type Principal struct {
	UserID uint64
	Email  string
	Role   models.UserRole
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == models.RoleAdmin }

// Authorize decides whether a principal may act on a resource. Pure
// decision function, no side effects. The admin requirement is checked
// before ownership; admins bypass ownership entirely.
func Authorize(p Principal, ownerID uint64, requiresAdmin bool) error {
	if requiresAdmin && !p.IsAdmin() {
		return ErrNotAdmin
	}
	if ownerID != 0 && p.UserID != ownerID && !p.IsAdmin() {
		return ErrNotOwner
	}
	return nil
}
