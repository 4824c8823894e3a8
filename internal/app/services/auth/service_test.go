package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"staybook/internal/app/policies"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/pkg/apperror"
)

func newService(t *testing.T) *Service {
	t.Helper()
	issuer, err := security.NewJWTIssuer("test-secret", "staybook")
	require.NoError(t, err)
	return &Service{
		Users:       memory.NewUserRepository(),
		Sessions:    memory.NewSessionStore(),
		Passwords:   security.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:      issuer,
		SessionTTL:  time.Hour,
		AdminEmails: []string{"Root@Example.com"},
	}
}

func TestRegisterAndResolve(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	res, err := s.Register(ctx, RegisterParams{Email: " Ada@Example.com ", Name: "Ada", Password: "secret1", WantToHost: true})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, []domainuser.Role{domainuser.RoleGuest, domainuser.RoleHost}, res.User.Roles)
	assert.NotEmpty(t, res.Token)

	resolved, err := s.ResolveToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, resolved.User.ID)
	actor := resolved.Actor()
	assert.True(t, actor.IsHost())
	assert.False(t, actor.IsAdmin())
}

func TestRegisterRules(t *testing.T) {
	s := newService(t)
	ctx := context.Background()

	_, err := s.Register(ctx, RegisterParams{Email: "a@example.com", Name: "A", Password: "12345"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = s.Register(ctx, RegisterParams{Email: "a@example.com", Name: " ", Password: "123456"})
	assert.ErrorIs(t, err, domainuser.ErrNameRequired)

	_, err = s.Register(ctx, RegisterParams{Email: "a@example.com", Name: "A", Password: "123456"})
	require.NoError(t, err)
	_, err = s.Register(ctx, RegisterParams{Email: "A@example.com", Name: "B", Password: "123456"})
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)

	admin, err := s.Register(ctx, RegisterParams{Email: "root@example.com", Name: "Root", Password: "123456"})
	require.NoError(t, err)
	assert.True(t, admin.User.HasRole(domainuser.RoleAdmin))
}

func TestLoginLogout(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	_, err := s.Register(ctx, RegisterParams{Email: "g@example.com", Name: "G", Password: "password"})
	require.NoError(t, err)

	_, err = s.Login(ctx, LoginParams{Email: "g@example.com", Password: "wrong-one"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = s.Login(ctx, LoginParams{Email: "nobody@example.com", Password: "password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := s.Login(ctx, LoginParams{Email: "G@example.com", Password: "password"})
	require.NoError(t, err)
	_, err = s.ResolveToken(ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, s.Logout(ctx, res.Token))
	_, err = s.ResolveToken(ctx, res.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	assert.NoError(t, s.Logout(ctx, "garbage"))
	_, err = s.ResolveToken(ctx, "")
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestChangeRole(t *testing.T) {
	s := newService(t)
	ctx := context.Background()
	guest, err := s.Register(ctx, RegisterParams{Email: "g@example.com", Name: "G", Password: "password"})
	require.NoError(t, err)
	root, err := s.Register(ctx, RegisterParams{Email: "root@example.com", Name: "Root", Password: "password"})
	require.NoError(t, err)
	admin := policies.Actor{ID: root.User.ID, Roles: root.User.Roles}

	_, err = s.ChangeRole(ctx, policies.Actor{}, guest.User.ID, "host")
	assert.ErrorIs(t, err, policies.ErrAuthRequired)
	_, err = s.ChangeRole(ctx, policies.Actor{ID: guest.User.ID, Roles: guest.User.Roles}, guest.User.ID, "admin")
	assert.ErrorIs(t, err, policies.ErrAdminOnly)
	_, err = s.ChangeRole(ctx, admin, guest.User.ID, "owner")
	assert.ErrorIs(t, err, domainuser.ErrInvalidRole)
	_, err = s.ChangeRole(ctx, admin, "missing", "host")
	assert.ErrorIs(t, err, domainuser.ErrNotFound)

	updated, err := s.ChangeRole(ctx, admin, guest.User.ID, "host")
	require.NoError(t, err)
	assert.Equal(t, []domainuser.Role{domainuser.RoleGuest, domainuser.RoleHost}, updated.Roles)

	resolved, err := s.ResolveToken(ctx, guest.Token)
	require.NoError(t, err)
	assert.True(t, resolved.Actor().IsHost(), "the live session sees the new role")
}
