package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider, mainly for tests
	TracerProvider trace.TracerProvider
}

// Tracing starts a server span per request through otelgin
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) { c.Next() }
	}

	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

func enrich(c *gin.Context) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	if id := GetRequestID(c); id != "" {
		span.SetAttributes(attribute.String("request_id", id))
	}
	if actor := GetActor(c); actor != "" {
		span.SetAttributes(attribute.String("actor", actor))
	}
	if status := c.Writer.Status(); status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}

// SpanEnricher must follow Authenticate. After the handler has written its
// response it tags the server span with the request id and actor, and marks
// client errors, which otelgin leaves unset.
func SpanEnricher() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		enrich(c)
	}
}
