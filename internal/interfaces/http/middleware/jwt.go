package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AnonymousActor is recorded when authentication is disabled
const AnonymousActor = "system"

var errMissingAuthorization = errors.New("missing authorization header")

// AuthConfig holds configuration for the authentication middleware
type AuthConfig struct {
	// JWTService validates bearer tokens. Nil disables authentication and
	// every request runs as AnonymousActor with every capability.
	JWTService *auth.JWTService
	// Revocations is optional; a failed lookup lets the request through.
	Revocations *auth.Revocations
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// Authenticate resolves the actor of each request and stores its claims
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	anonymous := &auth.Claims{Username: AnonymousActor, Capabilities: []string{auth.CapAll}}

	return func(c *gin.Context) {
		for _, skip := range cfg.SkipPaths {
			if c.Request.URL.Path == skip {
				c.Next()
				return
			}
		}

		if cfg.JWTService == nil {
			setActor(c, anonymous)
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, cfg.Logger, errMissingAuthorization, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, cfg.Logger, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}

		claims, err := cfg.JWTService.ValidateToken(strings.TrimPrefix(header, BearerPrefix))
		if err != nil {
			abortUnauthorized(c, cfg.Logger, err, "Token validation failed")
			return
		}

		if cfg.Revocations != nil && claims.ID != "" {
			revoked, err := cfg.Revocations.IsRevoked(c.Request.Context(), claims)
			if err != nil {
				cfg.Logger.Error("Failed to check token revocation", zap.String("jti", claims.ID), zap.Error(err))
			} else if revoked {
				abortUnauthorized(c, cfg.Logger, auth.ErrTokenRevoked, "Token has been revoked")
				return
			}
		}

		setActor(c, claims)
		c.Next()
	}
}

func setActor(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(logger.GinActorKey, claims.Username)

	ctx := c.Request.Context()
	ctx, reqLogger := logger.WithActor(ctx, logger.FromContext(ctx), claims.Username)
	c.Request = c.Request.WithContext(logger.WithContext(ctx, reqLogger))
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("Authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code, msg := dto.ErrCodeUnauthorized, "Invalid token"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, msg = dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		msg = "Token is not yet valid"
	case errors.Is(err, errMissingAuthorization):
		msg = "Authentication required"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, msg, GetRequestID(c)))
}

// GetClaims retrieves the claims stored by Authenticate
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetActor returns the username of the authenticated actor
func GetActor(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return claims.Username
	}
	return ""
}
