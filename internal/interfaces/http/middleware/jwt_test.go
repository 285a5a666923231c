package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/infrastructure/auth"
	"github.com/stockledger/backend/internal/infrastructure/cache"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(ttl time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Enabled: true,
		Secret:  "a-test-secret-that-is-at-least-32-chars",
		Issuer:  "stockledger-test",
		TTL:     ttl,
	})
}

func authRouter(cfg AuthConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Authenticate(cfg))
	router.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"actor":     GetActor(c),
			"ctx_actor": logger.GetActor(c.Request.Context()),
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"actor": GetActor(c)})
	})
	return router
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorInfo {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func get(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_ValidToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	token, _, err := svc.GenerateToken("clerk", []string{auth.CapView})
	require.NoError(t, err)

	w := get(authRouter(AuthConfig{JWTService: svc}), "/whoami", BearerPrefix+token)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "clerk", body["actor"])
	assert.Equal(t, "clerk", body["ctx_actor"])
}

func TestAuthenticate_Rejections(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	expiredSvc := newTestJWTService(-time.Minute)
	expired, _, err := expiredSvc.GenerateToken("clerk", nil)
	require.NoError(t, err)

	router := authRouter(AuthConfig{JWTService: svc})

	tests := []struct {
		name    string
		header  string
		code    string
		message string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized, "Authentication required"},
		{"not bearer", "Basic abc", dto.ErrCodeUnauthorized, "Invalid token"},
		{"garbage", BearerPrefix + "not.a.token", dto.ErrCodeUnauthorized, "Invalid token"},
		{"expired", BearerPrefix + expired, dto.ErrCodeTokenExpired, "Token has expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(router, "/whoami", tt.header)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			errInfo := decodeError(t, w)
			assert.Equal(t, tt.code, errInfo.Code)
			assert.Equal(t, tt.message, errInfo.Message)
			assert.NotEmpty(t, errInfo.RequestID)
		})
	}
}

func TestAuthenticate_RevokedToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	token, _, err := svc.GenerateToken("clerk", nil)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	revocations := auth.NewRevocations(cache.NewInMemoryIdempotencyStore(0))
	require.NoError(t, revocations.Revoke(context.Background(), claims))

	w := get(authRouter(AuthConfig{JWTService: svc, Revocations: revocations}), "/whoami", BearerPrefix+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, decodeError(t, w).Code)
}

func TestAuthenticate_SkipPaths(t *testing.T) {
	router := authRouter(AuthConfig{JWTService: newTestJWTService(time.Hour), SkipPaths: []string{"/health"}})

	w := get(router, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"actor":""`)
}

func TestAuthenticate_Disabled(t *testing.T) {
	router := gin.New()
	router.Use(Authenticate(AuthConfig{}), RequireCapability(auth.CapApproveAudit))
	router.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, GetActor(c))
	})

	w := get(router, "/whoami", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, AnonymousActor, w.Body.String())
}
