package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"staybook/internal/app/policies"
	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
	"staybook/internal/infra/security"
	"staybook/internal/pkg/apperror"
)

const minPasswordLength = 6

var (
	ErrInvalidCredentials = apperror.Unauthorized("auth.invalid_credentials", "invalid email or password")
	ErrPasswordTooShort   = apperror.Invalid("auth.password_too_short", "password must be at least 6 characters")
	ErrSessionExpired     = apperror.Unauthorized("auth.session_expired", "session expired, please log in again")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenIssuer interface {
	Issue(claims security.TokenClaims, issuedAt time.Time) (string, error)
	Parse(token string) (security.TokenClaims, error)
}

// Service registers users and manages the sessions behind their bearer tokens.
type Service struct {
	Users       domainuser.Repository
	Sessions    domainauth.SessionStore
	Passwords   PasswordHasher
	Tokens      TokenIssuer
	SessionTTL  time.Duration
	AdminEmails []string
	Clock       func() time.Time
	Logger      *slog.Logger
}

type RegisterParams struct {
	Email      string `validate:"required,email"`
	Name       string `validate:"required,max=100"`
	Password   string `validate:"required"`
	WantToHost bool
}

type LoginParams struct {
	Email    string
	Password string
}

type AuthResult struct {
	User      *domainuser.User
	Token     string
	ExpiresAt time.Time
}

type ResolveResult struct {
	User    *domainuser.User
	Session *domainauth.Session
}

// Actor is the request principal the buses authorize against.
func (r *ResolveResult) Actor() policies.Actor {
	return policies.Actor{ID: r.User.ID, Roles: slices.Clone(r.User.Roles)}
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" {
		return nil, domainuser.ErrEmailRequired
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, domainuser.ErrNameRequired
	}
	if utf8.RuneCountInString(params.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if _, err := s.Users.ByEmail(ctx, email); err == nil {
		return nil, domainuser.ErrEmailAlreadyUsed
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}
	hash, err := s.Passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}
	roles := []domainuser.Role{domainuser.RoleGuest}
	if params.WantToHost {
		roles = append(roles, domainuser.RoleHost)
	}
	if s.isAdminEmail(email) {
		roles = append(roles, domainuser.RoleAdmin)
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        email,
		Name:         params.Name,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", user.ID, "roles", user.Roles)
	}
	return result, nil
}

func (s *Service) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(params.Email)
	if email == "" || params.Password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(user.PasswordHash, params.Password); err != nil {
		return nil, ErrInvalidCredentials
	}
	result, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user authenticated", "user_id", user.ID)
	}
	return result, nil
}

// Logout revokes the session behind token. Unknown or malformed tokens are
// ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ensureDependencies(); err != nil {
		return err
	}
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.Sessions.Delete(ctx, claims.SessionID); err != nil && !errors.Is(err, domainauth.ErrSessionNotFound) {
		return err
	}
	if s.Logger != nil {
		s.Logger.Info("session terminated", "user_id", claims.UserID)
	}
	return nil
}

// ResolveToken verifies token and loads the live session and user behind it.
func (s *Service) ResolveToken(ctx context.Context, token string) (*ResolveResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, policies.ErrAuthRequired
	}
	claims, err := s.Tokens.Parse(token)
	if err != nil {
		return nil, ErrSessionExpired
	}
	session, err := s.Sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domainauth.ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	if session.UserID != claims.UserID || session.Expired(s.now()) {
		return nil, ErrSessionExpired
	}
	user, err := s.Users.ByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			_ = s.Sessions.Delete(ctx, session.ID)
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	return &ResolveResult{User: user, Session: session}, nil
}

// ChangeRole sets the role of the user behind userID. Only admins may do so;
// the new role applies on the user's next request.
func (s *Service) ChangeRole(ctx context.Context, actor policies.Actor, userID domainuser.ID, role string) (*domainuser.User, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	if !actor.Authenticated() {
		return nil, policies.ErrAuthRequired
	}
	if !actor.IsAdmin() {
		return nil, policies.ErrAdminOnly
	}
	user, err := s.Users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.AssignRole(domainuser.Role(role), s.now()); err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user role changed", "user_id", user.ID, "roles", user.Roles, "by", actor.ID)
	}
	return user, nil
}

func (s *Service) issueSession(ctx context.Context, user *domainuser.User) (*AuthResult, error) {
	now := s.now()
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		ID:     domainauth.SessionID(uuid.NewString()),
		UserID: user.ID,
		TTL:    s.sessionTTL(),
		Now:    now,
	})
	if err != nil {
		return nil, err
	}
	token, err := s.Tokens.Issue(security.TokenClaims{
		SessionID: session.ID,
		UserID:    user.ID,
		Roles:     user.Roles,
		ExpiresAt: session.ExpiresAt,
	}, now)
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *Service) isAdminEmail(email string) bool {
	return slices.ContainsFunc(s.AdminEmails, func(candidate string) bool {
		return domainuser.NormalizeEmail(candidate) == email
	})
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return 24 * time.Hour
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Users == nil:
		return errors.New("auth: user repository required")
	case s.Sessions == nil:
		return errors.New("auth: session store required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token issuer required")
	default:
		return nil
	}
}
