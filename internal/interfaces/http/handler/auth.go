package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
)

// SessionResponse describes the caller's token
type SessionResponse struct {
	Username     string     `json:"username"`
	Capabilities []string   `json:"capabilities"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// AuthHandler exposes the caller's identity and token revocation. Tokens
// are minted by the issuing system, not here.
type AuthHandler struct {
	BaseHandler
	revocations *auth.Revocations
}

// NewAuthHandler creates an AuthHandler. revocations may be nil, in which
// case logout is a no-op.
func NewAuthHandler(revocations *auth.Revocations) *AuthHandler {
	return &AuthHandler{revocations: revocations}
}

// RegisterRoutes mounts the session routes on rg
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.GET("/me", h.Me)
	g.POST("/logout", h.Logout)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.Error(c, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}
	resp := SessionResponse{Username: claims.Username, Capabilities: claims.Capabilities}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.Time
		resp.ExpiresAt = &t
	}
	h.Success(c, resp)
}

// Logout handles POST /auth/logout, revoking the presented token
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if h.revocations != nil && claims != nil && claims.ID != "" {
		if err := h.revocations.Revoke(c.Request.Context(), claims); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	h.NoContent(c)
}
