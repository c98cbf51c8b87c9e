package middleware

import (
	"net/http"
	"strings"

	"github.com/erpbridge/backend/internal/infrastructure/logger"
	"github.com/erpbridge/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Keys used to carry the tenant through gin.Context
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = logger.TenantHeader
)

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// SkipPaths are paths served without a tenant (health checks)
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready"},
	}
}

// Tenant requires a UUID X-Tenant-ID header and stores the parsed tenant ID.
// There is no default tenant.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		raw := strings.TrimSpace(c.GetHeader(TenantHeaderKey))
		if raw == "" {
			abortTenant(c, dto.ErrCodeTenantRequired, "X-Tenant-ID header is required")
			return
		}
		if len(raw) > MaxTenantIDLength {
			abortTenant(c, dto.ErrCodeTenantInvalid, "X-Tenant-ID must be a UUID")
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			log.Debug("Rejected tenant header",
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.String("path", path),
			)
			abortTenant(c, dto.ErrCodeTenantInvalid, "X-Tenant-ID must be a UUID")
			return
		}

		c.Set(TenantIDKey, tenantID)
		c.Next()
	}
}

func abortTenant(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}

// GetTenantID returns the tenant stored by Tenant, or uuid.Nil
func GetTenantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(TenantIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
