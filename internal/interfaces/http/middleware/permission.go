package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
)

// RequireCapability aborts with 403 unless the actor holds capability
func RequireCapability(capability string) gin.HandlerFunc {
	return RequireAnyCapability(capability)
}

// RequireAnyCapability aborts with 403 unless the actor holds one of capabilities
func RequireAnyCapability(capabilities ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required", GetRequestID(c)))
			return
		}
		for _, capability := range capabilities {
			if claims.Can(capability) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden,
			dto.NewErrorResponse(dto.ErrCodeForbidden, "Missing capability "+capabilities[0], GetRequestID(c)))
	}
}

// HasCapability reports whether the actor holds capability
func HasCapability(c *gin.Context, capability string) bool {
	claims := GetClaims(c)
	return claims != nil && claims.Can(capability)
}
