package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

var (
	ErrSecretRequired = errors.New("security: jwt secret is required")
	ErrInvalidToken   = errors.New("security: invalid token")
)

// Claims is the bearer token body. The registered ID (jti) names the session
// the token belongs to and the subject is the user id.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// TokenClaims is what the application needs from a verified token.
type TokenClaims struct {
	SessionID domainauth.SessionID
	UserID    domainuser.ID
	Roles     []domainuser.Role
	ExpiresAt time.Time
}

// JWTIssuer signs and verifies HS256 bearer tokens.
type JWTIssuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTIssuer(secret, issuer string) (*JWTIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretRequired
	}
	return &JWTIssuer{secret: []byte(secret), issuer: issuer, now: time.Now}, nil
}

// WithClock replaces the clock used to validate expiry.
func (i *JWTIssuer) WithClock(now func() time.Time) *JWTIssuer {
	cp := *i
	cp.now = now
	return &cp
}

func (i *JWTIssuer) Issue(c TokenClaims, issuedAt time.Time) (string, error) {
	roles := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		roles = append(roles, string(r))
	}
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        string(c.SessionID),
			Subject:   string(c.UserID),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("security: sign token: %w", err)
	}
	return signed, nil
}

func (i *JWTIssuer) Parse(raw string) (TokenClaims, error) {
	claims := &Claims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	}
	if i.issuer != "" {
		opts = append(opts, jwt.WithIssuer(i.issuer))
	}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return TokenClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return TokenClaims{}, ErrInvalidToken
	}
	out := TokenClaims{
		SessionID: domainauth.SessionID(claims.ID),
		UserID:    domainuser.ID(claims.Subject),
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	for _, r := range claims.Roles {
		if role := domainuser.ParseRole(r); role != "" {
			out.Roles = append(out.Roles, role)
		}
	}
	return out, nil
}
