// Package authz decides whether a resolved identity may perform an operation.
package authz

import (
	"slices"

	"github.com/google/uuid"

	"viralacademy.com/academy/internal/entity"
	"viralacademy.com/academy/pkg/apperror"
)

// Identity is the caller resolved from the session token.
type Identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == entity.RoleAdmin
}

// IsStaff reports MENTOR or ADMIN.
func (i *Identity) IsStaff() bool {
	return i != nil && (i.Role == entity.RoleMentor || i.Role == entity.RoleAdmin)
}

type Decision int

const (
	Allowed Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "forbidden"
	}
}

var (
	// Staff can manage content: courses, lessons, live events, moderation.
	Staff = []string{entity.RoleMentor, entity.RoleAdmin}
	// AdminOnly covers user management.
	AdminOnly = []string{entity.RoleAdmin}
	// Anyone means any authenticated identity.
	Anyone []string
)

// Check evaluates the policy:
//   - no identity is Unauthenticated
//   - ADMIN is always allowed
//   - a role listed in roles is allowed
//   - the owner of the resource is allowed
//   - no roles and no owner means any authenticated identity
//
// Anything else is Forbidden.
func Check(identity *Identity, roles []string, ownerID *uuid.UUID) Decision {
	if identity == nil || identity.ID == uuid.Nil {
		return Unauthenticated
	}
	if identity.Role == entity.RoleAdmin {
		return Allowed
	}
	if len(roles) == 0 && ownerID == nil {
		return Allowed
	}
	if slices.Contains(roles, identity.Role) {
		return Allowed
	}
	if ownerID != nil && *ownerID == identity.ID {
		return Allowed
	}
	return Forbidden
}

// Authorize is Check translated into the error taxonomy.
func Authorize(identity *Identity, roles []string, ownerID *uuid.UUID) error {
	switch Check(identity, roles, ownerID) {
	case Allowed:
		return nil
	case Unauthenticated:
		return apperror.Unauthenticated("authentication required")
	default:
		return apperror.Forbidden("you do not have permission to perform this action")
	}
}

// Owner is a convenience for passing a resource owner to Check.
func Owner(id uuid.UUID) *uuid.UUID {
	return &id
}
