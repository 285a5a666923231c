package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func capabilityRouter(claims *auth.Claims, guard gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(JWTClaimsKey, claims)
		}
		c.Next()
	})
	router.POST("/transfers/:id/approve", guard, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func postApprove(router http.Handler) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/transfers/1/approve", nil))
	return w
}

func TestRequireCapability(t *testing.T) {
	t.Run("granted", func(t *testing.T) {
		claims := &auth.Claims{Username: "manager", Capabilities: []string{auth.CapApproveTransfer}}
		w := postApprove(capabilityRouter(claims, RequireCapability(auth.CapApproveTransfer)))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("wildcard", func(t *testing.T) {
		claims := &auth.Claims{Username: "admin", Capabilities: []string{auth.CapAll}}
		w := postApprove(capabilityRouter(claims, RequireCapability(auth.CapApproveTransfer)))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing capability", func(t *testing.T) {
		claims := &auth.Claims{Username: "clerk", Capabilities: []string{auth.CapTransfer}}
		w := postApprove(capabilityRouter(claims, RequireCapability(auth.CapApproveTransfer)))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, w).Code)
	})

	t.Run("no claims", func(t *testing.T) {
		w := postApprove(capabilityRouter(nil, RequireCapability(auth.CapApproveTransfer)))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAnyCapability(t *testing.T) {
	claims := &auth.Claims{Username: "auditor", Capabilities: []string{auth.CapAudit}}
	w := postApprove(capabilityRouter(claims, RequireAnyCapability(auth.CapApproveAudit, auth.CapAudit)))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHasCapability(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.False(t, HasCapability(c, auth.CapView))

	c.Set(JWTClaimsKey, &auth.Claims{Username: "clerk", Capabilities: []string{auth.CapView}})
	assert.True(t, HasCapability(c, auth.CapView))
	assert.False(t, HasCapability(c, auth.CapManageStock))
}
