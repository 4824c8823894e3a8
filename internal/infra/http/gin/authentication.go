package ginserver

import (
	"context"
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/policies"
	"staybook/internal/app/services/auth"
	domainuser "staybook/internal/domain/user"
)

const (
	principalContextKey = "staybook.principal"
	authErrorContextKey = "staybook.auth_error"
)

type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*auth.ResolveResult, error)
}

type principal struct {
	Actor policies.Actor
	User  *domainuser.User
	Token string
}

// AuthMiddleware resolves a bearer token when one is sent. Anonymous requests
// pass through; requireAuth rejects them on protected routes.
type AuthMiddleware struct {
	Service TokenResolver
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Set(authErrorContextKey, err)
		c.Next()
		return
	}
	c.Set(principalContextKey, principal{Actor: resolved.Actor(), User: resolved.User, Token: token})
	c.Next()
}

// requireAuth aborts unauthenticated requests with the reason the token failed.
func requireAuth(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentPrincipal(c); ok {
			c.Next()
			return
		}
		if raw, exists := c.Get(authErrorContextKey); exists {
			if err, ok := raw.(error); ok {
				respondError(c, logger, err)
				return
			}
		}
		respondError(c, logger, policies.ErrAuthRequired)
	}
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// actorFrom returns the caller, or the zero Actor for anonymous requests.
func actorFrom(c *gin.Context) policies.Actor {
	p, _ := currentPrincipal(c)
	return p.Actor
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
