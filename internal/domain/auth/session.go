package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"staybook/internal/domain/user"
)

var (
	ErrSessionIDRequired = errors.New("auth: session id is required")
	ErrUserRequired      = errors.New("auth: user is required")
	ErrTTLInvalid        = errors.New("auth: ttl must be positive")
	ErrSessionNotFound   = errors.New("auth: session not found")
)

// SessionID is the token identifier (jti) a bearer token is bound to.
type SessionID string

// Session records an issued bearer token so it can be revoked before it expires.
type Session struct {
	ID        SessionID
	UserID    user.ID
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CreateSessionParams struct {
	ID     SessionID
	UserID user.ID
	TTL    time.Duration
	Now    time.Time
}

func NewSession(params CreateSessionParams) (*Session, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrSessionIDRequired
	}
	if strings.TrimSpace(string(params.UserID)) == "" {
		return nil, ErrUserRequired
	}
	if params.TTL <= 0 {
		return nil, ErrTTLInvalid
	}
	now := params.Now.UTC()
	return &Session{
		ID:        SessionID(id),
		UserID:    params.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(params.TTL),
	}, nil
}

func (s *Session) Expired(at time.Time) bool {
	return !s.ExpiresAt.After(at.UTC())
}

// TTLAt is the remaining lifetime at the given instant.
func (s *Session) TTLAt(at time.Time) time.Duration {
	return s.ExpiresAt.Sub(at.UTC())
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, id SessionID) (*Session, error)
	Delete(ctx context.Context, id SessionID) error
}
