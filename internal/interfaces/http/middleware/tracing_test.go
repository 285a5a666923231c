package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func tracedRouter(t *testing.T) (*gin.Engine, *tracetest.SpanRecorder) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	router := gin.New()
	router.Use(
		RequestID(),
		Tracing(TracingConfig{ServiceName: "stockledger-test", Enabled: true, TracerProvider: tp}),
		Authenticate(AuthConfig{}),
		SpanEnricher(),
	)
	router.GET("/transfers/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.POST("/transfers/:id/approve", func(c *gin.Context) {
		c.Status(http.StatusConflict)
	})
	return router, sr
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) string {
	for _, kv := range span.Attributes() {
		if kv.Key == attribute.Key(key) {
			return kv.Value.AsString()
		}
	}
	return ""
}

func TestTracing(t *testing.T) {
	router, sr := tracedRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/transfers/42", nil)
	req.Header.Set(RequestIDHeader, "req-trace")
	router.ServeHTTP(httptest.NewRecorder(), req)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /transfers/:id", spans[0].Name())
	assert.Equal(t, "req-trace", spanAttr(spans[0], "request_id"))
	assert.Equal(t, AnonymousActor, spanAttr(spans[0], "actor"))
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestTracing_ClientErrorMarked(t *testing.T) {
	router, sr := tracedRouter(t)
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/transfers/42/approve", nil))

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestTracing_Disabled(t *testing.T) {
	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false}))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
