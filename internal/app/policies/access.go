// Package policies holds the capability rules shared by command and query handlers.
package policies

import (
	"context"
	"slices"

	domainuser "staybook/internal/domain/user"
	"staybook/internal/pkg/apperror"
)

var (
	ErrAuthRequired = apperror.Unauthorized("auth.required", "authentication required")
	ErrForbidden    = apperror.Forbidden("access.forbidden", "you are not allowed to perform this action")
	ErrAdminOnly    = apperror.Forbidden("access.admin_only", "admin privileges required")
	ErrHostOnly     = apperror.Forbidden("access.host_only", "host privileges required")
)

// Actor is the authenticated caller as seen by the application layer.
type Actor struct {
	ID    domainuser.ID
	Roles []domainuser.Role
}

func (a Actor) Authenticated() bool {
	return a.ID != ""
}

func (a Actor) HasRole(role domainuser.Role) bool {
	return domainuser.HasRole(a.Roles, role)
}

func (a Actor) IsAdmin() bool {
	return a.HasRole(domainuser.RoleAdmin)
}

func (a Actor) IsHost() bool {
	return a.HasRole(domainuser.RoleHost)
}

// CanManage is the owner-or-admin predicate.
func (a Actor) CanManage(owner domainuser.ID) bool {
	if !a.Authenticated() {
		return false
	}
	return a.IsAdmin() || (owner != "" && a.ID == owner)
}

// Restricted messages declare which roles may run them; any one role suffices.
type Restricted interface {
	Principal() Actor
	RequiredRoles() []domainuser.Role
}

// RoleAuthorizer enforces Restricted on the command and query buses.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(_ context.Context, message any) error {
	restricted, ok := message.(Restricted)
	if !ok {
		return nil
	}
	actor := restricted.Principal()
	if !actor.Authenticated() {
		return ErrAuthRequired
	}
	required := restricted.RequiredRoles()
	if len(required) == 0 {
		return nil
	}
	if slices.ContainsFunc(required, actor.HasRole) {
		return nil
	}
	return RoleError(required)
}

// RoleError picks the message matching the narrowest role requirement.
func RoleError(required []domainuser.Role) error {
	switch {
	case len(required) == 1 && required[0] == domainuser.RoleAdmin:
		return ErrAdminOnly
	case slices.Contains(required, domainuser.RoleHost):
		return ErrHostOnly
	default:
		return ErrForbidden
	}
}
