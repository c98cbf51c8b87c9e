package router

import (
	"net/http"
	"time"

	"github.com/erpbridge/backend/internal/infrastructure/logger"
	"github.com/erpbridge/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// EngineConfig configures the middleware stack of the gin engine
type EngineConfig struct {
	ServiceName    string
	TracingEnabled bool
	TracerProvider trace.TracerProvider
	CORSOrigins    []string
	CORSMethods    []string
	CORSHeaders    []string
	MaxBodySize    int64
	TrustedProxies []string
}

// NewEngine builds a gin engine with the shared middleware stack:
// recovery, request id, tracing, access log, security headers, CORS and body limit.
func NewEngine(cfg EngineConfig, log *zap.Logger) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSOrigins
	if len(cfg.CORSMethods) > 0 {
		cors.AllowMethods = cfg.CORSMethods
	}
	if len(cfg.CORSHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSHeaders
	}

	bodyLimit := cfg.MaxBodySize
	if bodyLimit <= 0 {
		bodyLimit = middleware.DefaultBodyLimit
	}

	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    cfg.ServiceName,
			Enabled:        cfg.TracingEnabled,
			TracerProvider: cfg.TracerProvider,
		}),
		middleware.SpanAnnotator(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(bodyLimit),
	)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	return engine, nil
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	tenant     middleware.TenantConfig
	groups     []registration
}

type registration struct {
	prefix    string
	registrar RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithTenantConfig overrides the tenant middleware configuration
func WithTenantConfig(cfg middleware.TenantConfig) RouterOption {
	return func(r *Router) {
		r.tenant = cfg
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		tenant:     middleware.DefaultTenantConfig(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register mounts a registrar under /api/{version}{prefix}
func (r *Router) Register(prefix string, registrar RouteRegistrar) *Router {
	r.groups = append(r.groups, registration{prefix: prefix, registrar: registrar})
	return r
}

// Setup registers all routes with the engine. Every API route requires a tenant.
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	api.Use(middleware.Tenant(r.tenant))

	for _, g := range r.groups {
		g.registrar.RegisterRoutes(api.Group(g.prefix))
	}
}
