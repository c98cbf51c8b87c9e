// Package middleware provides the gin middleware of the ERP document API.
package middleware

import (
	"net/http"

	"github.com/erpbridge/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Header length bounds for values copied into spans and logs
const (
	MaxRequestIDLength = 128
	MaxTenantIDLength  = 64
)

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
	// TracerProvider overrides the global provider when set
	TracerProvider trace.TracerProvider
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "erpbridge",
		Enabled:     true,
	}
}

// Tracing wraps otelgin. Spans are named after the route pattern.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	var opts []otelgin.Option
	if cfg.TracerProvider != nil {
		opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
	}
	return otelgin.Middleware(cfg.ServiceName, opts...)
}

// SpanAnnotator must run after Tracing and RequestID. Once the rest of the
// chain returns it tags the request span with request_id, tenant_id and an
// error status for 5xx responses.
func SpanAnnotator() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}
		enrichSpan(c, span)
	}
}

func enrichSpan(c *gin.Context, span trace.Span) {
	if requestID := c.GetString(RequestIDKey); requestID != "" {
		telemetry.SetAttribute(span, "request_id", requestID)
	}
	if tenantID := GetTenantID(c); tenantID != uuid.Nil {
		telemetry.SetAttribute(span, telemetry.SpanAttrTenantID, tenantID.String())
	}

	status := c.Writer.Status()
	if status >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, http.StatusText(status))
	}
}
