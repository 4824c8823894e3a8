package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"staybook/internal/app/dto"
	"staybook/internal/app/middleware"
	"staybook/internal/app/policies"
	authsvc "staybook/internal/app/services/auth"
	domainuser "staybook/internal/domain/user"
)

type AuthService interface {
	Register(ctx context.Context, params authsvc.RegisterParams) (*authsvc.AuthResult, error)
	Login(ctx context.Context, params authsvc.LoginParams) (*authsvc.AuthResult, error)
	Logout(ctx context.Context, token string) error
	ChangeRole(ctx context.Context, actor policies.Actor, userID domainuser.ID, role string) (*domainuser.User, error)
}

type AuthHandler struct {
	Service   AuthService
	Validator middleware.Validator
	Logger    *slog.Logger
}

type registerRequest struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Password   string `json:"password"`
	WantToHost bool   `json:"wantToHost"`
}

type roleRequest struct {
	Role string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMalformed(c, h.Logger)
		return
	}
	params := authsvc.RegisterParams{
		Email:      strings.TrimSpace(req.Email),
		Name:       strings.TrimSpace(req.Name),
		Password:   req.Password,
		WantToHost: req.WantToHost,
	}
	if h.Validator != nil {
		if err := h.Validator.Validate(c.Request.Context(), params); err != nil {
			respondError(c, h.Logger, err)
			return
		}
	}
	result, err := h.Service.Register(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, authSession(result))
}

func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMalformed(c, h.Logger)
		return
	}
	result, err := h.Service.Login(c.Request.Context(), authsvc.LoginParams{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, authSession(result))
}

func (h AuthHandler) Logout(c *gin.Context) {
	p, _ := currentPrincipal(c)
	if err := h.Service.Logout(c.Request.Context(), p.Token); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h AuthHandler) Me(c *gin.Context) {
	p, ok := currentPrincipal(c)
	if !ok || p.User == nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.MapUser(p.User)})
}

// ChangeRole is the admin endpoint behind PUT /users/:userId/role.
func (h AuthHandler) ChangeRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMalformed(c, h.Logger)
		return
	}
	user, err := h.Service.ChangeRole(c.Request.Context(), actorFrom(c), domainuser.ID(c.Param("userId")), req.Role)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    dto.MapUser(user),
		"message": localized(c, "user.role_updated", "user role updated"),
	})
}

func authSession(result *authsvc.AuthResult) dto.AuthSession {
	return dto.AuthSession{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      dto.MapUser(result.User),
	}
}
