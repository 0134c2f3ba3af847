// Package auth identifies the acting principal and decides which accounts it
// may read or mutate.
package auth

import (
	"context"

	"github.com/benx421/ledger/internal/models"
	"github.com/google/uuid"
)

// Role is the authorization level of a principal
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is the authenticated caller of an operation
type Principal struct {
	Role Role
	ID   uuid.UUID
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanAccess reports whether p may read or mutate account: only its owner or an admin may.
func CanAccess(p Principal, account *models.Account) bool {
	if account == nil {
		return false
	}
	return p.IsAdmin() || p.ID == account.OwnerID
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by WithPrincipal.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
