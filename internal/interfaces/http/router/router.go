package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/logger"
	"github.com/stockledger/backend/internal/interfaces/http/dto"
	"github.com/stockledger/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithGroupMiddleware adds middleware applied to every API route
func WithGroupMiddleware(handlers ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.middleware = append(r.middleware, handlers...)
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup registers all routes under /api/{version}
func (r *Router) Setup() {
	api := r.engine.Group("/api/"+r.apiVersion, r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Config describes the HTTP stack in front of the ledger
type Config struct {
	ServiceName    string
	MaxBodySize    int64
	TrustedProxies []string
	CORSOrigins    []string

	TracingEnabled bool
	TracerProvider trace.TracerProvider
	Meter          metric.Meter

	Auth           middleware.AuthConfig
	Idempotency    shared.IdempotencyStore
	IdempotencyTTL time.Duration

	Logger *zap.Logger
}

// NewEngine builds a gin engine with the global middleware chain:
// request id, tracing, access log, panic recovery, CORS and metrics.
func NewEngine(cfg Config) (*gin.Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSOrigins

	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        cfg.TracingEnabled,
			TracerProvider: cfg.TracerProvider,
		}),
		logger.GinMiddleware(cfg.Logger),
		logger.Recovery(cfg.Logger),
		middleware.CORSWithConfig(cors),
		middleware.HTTPMetrics(cfg.Meter, cfg.Logger),
	)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(dto.ErrCodeNotFound, "Route not found", middleware.GetRequestID(c)))
	})
	return engine, nil
}

// APIMiddleware returns the chain applied to every API route: body limit,
// authentication, span enrichment and Idempotency-Key replay protection.
func APIMiddleware(cfg Config) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{}
	if cfg.MaxBodySize > 0 {
		chain = append(chain, middleware.BodyLimit(cfg.MaxBodySize))
	}
	if cfg.Auth.Logger == nil {
		cfg.Auth.Logger = cfg.Logger
	}
	chain = append(chain, middleware.Authenticate(cfg.Auth), middleware.SpanEnricher())
	if cfg.Idempotency != nil {
		chain = append(chain, middleware.Idempotency(cfg.Idempotency, cfg.IdempotencyTTL, cfg.Logger))
	}
	return chain
}
