package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserNormalizesInput(t *testing.T) {
	u, err := NewUser(CreateParams{
		ID:           "u-1",
		Email:        "  Ayse@Example.COM ",
		Name:         " Ayşe ",
		PasswordHash: "hash",
		Roles:        []Role{"user", "HOST", "host"},
		CreatedAt:    time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "ayse@example.com", u.Email)
	assert.Equal(t, "Ayşe", u.Name)
	assert.Equal(t, []Role{RoleGuest, RoleHost}, u.Roles)
	assert.True(t, u.IsHost())
	assert.False(t, u.HasRole(RoleAdmin))
}

func TestNewUserDefaultsToGuest(t *testing.T) {
	u, err := NewUser(CreateParams{ID: "u-2", Email: "a@b.c", Name: "A", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleGuest}, u.Roles)
}

func TestNewUserRejectsUnknownRole(t *testing.T) {
	_, err := NewUser(CreateParams{ID: "u-3", Email: "a@b.c", Name: "A", PasswordHash: "h", Roles: []Role{"superuser"}})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestEnsureRoleIsIdempotent(t *testing.T) {
	u, err := NewUser(CreateParams{ID: "u-4", Email: "a@b.c", Name: "A", PasswordHash: "h"})
	require.NoError(t, err)
	now := time.Now()
	require.NoError(t, u.EnsureRole(RoleAdmin, now))
	require.NoError(t, u.EnsureRole(RoleAdmin, now))
	assert.Equal(t, []Role{RoleGuest, RoleAdmin}, u.Roles)
}

func TestAssignRoleReplacesRoles(t *testing.T) {
	u, err := NewUser(CreateParams{ID: "u-3", Email: "h@b.c", Name: "H", PasswordHash: "h", Roles: []Role{RoleGuest, RoleHost}})
	require.NoError(t, err)
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, u.AssignRole("admin", now))
	assert.Equal(t, []Role{RoleGuest, RoleAdmin}, u.Roles)
	assert.False(t, u.IsHost())
	assert.Equal(t, now, u.UpdatedAt)

	require.NoError(t, u.AssignRole("user", now))
	assert.Equal(t, []Role{RoleGuest}, u.Roles)

	assert.ErrorIs(t, u.AssignRole("owner", now), ErrInvalidRole)
	assert.Equal(t, []Role{RoleGuest}, u.Roles)
}
