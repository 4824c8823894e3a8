package policies

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainuser "staybook/internal/domain/user"
	"staybook/internal/pkg/apperror"
)

type gated struct {
	actor Actor
	roles []domainuser.Role
}

func (g gated) Principal() Actor                 { return g.actor }
func (g gated) RequiredRoles() []domainuser.Role { return g.roles }

func TestCanManage(t *testing.T) {
	owner := Actor{ID: "u-1", Roles: []domainuser.Role{domainuser.RoleHost}}
	admin := Actor{ID: "u-9", Roles: []domainuser.Role{domainuser.RoleAdmin}}
	stranger := Actor{ID: "u-2", Roles: []domainuser.Role{domainuser.RoleGuest}}

	assert.True(t, owner.CanManage("u-1"))
	assert.True(t, admin.CanManage("u-1"))
	assert.False(t, stranger.CanManage("u-1"))
	assert.False(t, Actor{}.CanManage(""))
}

func TestRoleAuthorizer(t *testing.T) {
	ctx := context.Background()
	authz := RoleAuthorizer{}
	host := Actor{ID: "h", Roles: []domainuser.Role{domainuser.RoleGuest, domainuser.RoleHost}}
	guest := Actor{ID: "g", Roles: []domainuser.Role{domainuser.RoleGuest}}

	assert.NoError(t, authz.Authorize(ctx, "not restricted"))
	assert.NoError(t, authz.Authorize(ctx, gated{actor: host, roles: []domainuser.Role{domainuser.RoleHost, domainuser.RoleAdmin}}))
	assert.ErrorIs(t, authz.Authorize(ctx, gated{actor: guest, roles: []domainuser.Role{domainuser.RoleHost}}), ErrHostOnly)
	assert.ErrorIs(t, authz.Authorize(ctx, gated{actor: host, roles: []domainuser.Role{domainuser.RoleAdmin}}), ErrAdminOnly)
	assert.ErrorIs(t, authz.Authorize(ctx, gated{roles: []domainuser.Role{domainuser.RoleAdmin}}), apperror.ErrUnauthorized)
}
