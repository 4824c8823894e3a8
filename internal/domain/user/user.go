package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/pkg/apperror"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrEmailRequired       = apperror.Invalid("user.email_required", "email is required")
	ErrNameRequired        = apperror.Invalid("user.name_required", "name is required")
	ErrInvalidRole         = apperror.Invalid("user.invalid_role", "invalid role")
	ErrEmailAlreadyUsed    = apperror.Invalid("user.email_taken", "this email address is already in use")
	ErrNotFound            = apperror.NotFound("user.not_found", "user not found")
)

type ID string

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
}

func NewUser(params CreateParams) (*User, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrIDRequired
	}
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if strings.TrimSpace(params.PasswordHash) == "" {
		return nil, ErrPasswordHashMissing
	}
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	roles, err := normalizeRoles(params.Roles)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []Role{RoleGuest}
	}
	now := params.CreatedAt.UTC()
	return &User{
		ID:           ID(id),
		Email:        email,
		Name:         name,
		PasswordHash: params.PasswordHash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// EnsureRole grants role if the user does not hold it yet.
func (u *User) EnsureRole(role Role, now time.Time) error {
	role = ParseRole(string(role))
	if role == "" {
		return ErrInvalidRole
	}
	if u.HasRole(role) {
		return nil
	}
	u.Roles = append(u.Roles, role)
	u.UpdatedAt = now.UTC()
	return nil
}

// AssignRole replaces the user's roles with role on top of the guest role.
func (u *User) AssignRole(role Role, now time.Time) error {
	role = ParseRole(string(role))
	if role == "" {
		return ErrInvalidRole
	}
	u.Roles = []Role{RoleGuest}
	if role != RoleGuest {
		u.Roles = append(u.Roles, role)
	}
	u.UpdatedAt = now.UTC()
	return nil
}

func (u *User) HasRole(role Role) bool {
	return HasRole(u.Roles, role)
}

func (u *User) IsHost() bool {
	return u.HasRole(RoleHost)
}

// HasRole reports whether roles contains role.
func HasRole(roles []Role, role Role) bool {
	role = ParseRole(string(role))
	if role == "" {
		return false
	}
	for _, current := range roles {
		if ParseRole(string(current)) == role {
			return true
		}
	}
	return false
}

// ParseRole maps a raw role name to a known role, or "" when unknown.
// The legacy "user" role is the guest role.
func ParseRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "guest", "user":
		return RoleGuest
	case "host":
		return RoleHost
	case "admin":
		return RoleAdmin
	default:
		return ""
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeRoles(roles []Role) ([]Role, error) {
	seen := make(map[Role]struct{}, len(roles))
	normalized := make([]Role, 0, len(roles))
	for _, role := range roles {
		parsed := ParseRole(string(role))
		if parsed == "" {
			return nil, ErrInvalidRole
		}
		if _, ok := seen[parsed]; ok {
			continue
		}
		seen[parsed] = struct{}{}
		normalized = append(normalized, parsed)
	}
	return normalized, nil
}
