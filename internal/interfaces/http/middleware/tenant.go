package middleware

import (
	"net/http"
	"strings"

	"github.com/craftline/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Context and header keys for tenant identification.
const (
	TenantIDKey     = "tenant_id"
	TenantCodeKey   = "tenant_code"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantInfo is what a validator returns for a known tenant.
type TenantInfo struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

// TenantExtractor extracts a tenant id from a request.
type TenantExtractor interface {
	ExtractTenantID(c *gin.Context) (string, error)
}

// TenantValidator checks that a tenant exists and is active.
type TenantValidator interface {
	ValidateTenant(tenantID string) (*TenantInfo, error)
}

// TenantMiddlewareConfig configures how tenant identity is resolved.
type TenantMiddlewareConfig struct {
	// HeaderEnabled allows the X-Tenant-ID header as a source.
	HeaderEnabled bool
	// JWTEnabled reads the tenant from JWT claims; the JWT middleware must
	// run earlier in the chain.
	JWTEnabled bool
	// SubdomainEnabled derives the tenant from the host subdomain.
	SubdomainEnabled bool
	// BaseDomain anchors subdomain extraction, e.g. "craftline.io".
	BaseDomain string
	// SkipPaths bypass tenant resolution entirely.
	SkipPaths []string
	// Required rejects requests without a resolvable tenant.
	Required bool
	// Validator, when set, confirms the tenant is known and active.
	Validator TenantValidator
	// Logger records resolution and validation outcomes.
	Logger *zap.Logger
}

// DefaultTenantConfig resolves from JWT claims first, then the header, and
// requires a tenant on every non-skipped path.
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		HeaderEnabled: true,
		JWTEnabled:    true,
		SkipPaths:     []string{"/health", "/healthz", "/ready", "/metrics", "/api/v1/health"},
		Required:      true,
	}
}

// TenantMiddleware resolves the tenant with the default config.
// Resolution order: JWT claims, then X-Tenant-ID header, then subdomain.
func TenantMiddleware() gin.HandlerFunc {
	return TenantMiddlewareWithConfig(DefaultTenantConfig())
}

// TenantMiddlewareWithConfig resolves the tenant and stores it on both the
// gin context and the request context.
func TenantMiddlewareWithConfig(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		tenantID, source := resolveTenantID(c, cfg)

		if tenantID != "" {
			if _, err := uuid.Parse(tenantID); err != nil {
				abortTenantUnauthorized(c, "Invalid tenant ID format")
				return
			}
		}

		if tenantID == "" && cfg.Required {
			abortTenantUnauthorized(c, "Tenant identification required")
			return
		}

		var info *TenantInfo
		if tenantID != "" && cfg.Validator != nil {
			var err error
			info, err = cfg.Validator.ValidateTenant(tenantID)
			if err != nil {
				log := cfg.Logger
				if log == nil {
					log = logger.FromContext(c.Request.Context())
				}
				log.Warn("Tenant validation failed",
					zap.String("tenant_id", tenantID),
					zap.Error(err),
				)
				abortTenantUnauthorized(c, "Invalid or inactive tenant")
				return
			}
		}

		if tenantID != "" {
			c.Set(TenantIDKey, tenantID)
			if info != nil {
				c.Set(TenantCodeKey, info.Code)
			}

			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithTenantID(ctx, log, tenantID)
			c.Request = c.Request.WithContext(ctx)

			if cfg.Logger != nil {
				cfg.Logger.Debug("Tenant identified",
					zap.String("tenant_id", tenantID),
					zap.String("method", source),
				)
			}
		}

		c.Next()
	}
}

// resolveTenantID tries each enabled source in priority order and reports
// which one supplied the id.
func resolveTenantID(c *gin.Context, cfg TenantMiddlewareConfig) (string, string) {
	if cfg.JWTEnabled {
		if v, ok := c.Get("jwt_tenant_id"); ok {
			if tid, ok := v.(string); ok && tid != "" {
				return tid, "jwt"
			}
		}
	}

	if cfg.HeaderEnabled {
		if tid := c.GetHeader(TenantHeaderKey); tid != "" {
			return tid, "header"
		}
	}

	if cfg.SubdomainEnabled && cfg.BaseDomain != "" {
		if tid := tenantFromSubdomain(c.Request.Host, cfg.BaseDomain); tid != "" {
			return tid, "subdomain"
		}
	}

	return "", ""
}

// tenantFromSubdomain maps "acme.craftline.io" under base domain
// "craftline.io" to "acme". "www" and the bare domain yield nothing.
func tenantFromSubdomain(host, baseDomain string) string {
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	if !strings.HasSuffix(host, baseDomain) {
		return ""
	}

	subdomain := strings.TrimSuffix(host, "."+baseDomain)
	if subdomain == host || subdomain == "" || subdomain == "www" {
		return ""
	}

	// Multi-level subdomains resolve to their leftmost label.
	return strings.Split(subdomain, ".")[0]
}

func abortTenantUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetTenantID returns the resolved tenant id, or "".
func GetTenantID(c *gin.Context) string {
	if v, ok := c.Get(TenantIDKey); ok {
		if tid, ok := v.(string); ok {
			return tid
		}
	}
	return ""
}

// GetTenantUUID returns the resolved tenant id parsed as a UUID;
// uuid.Nil with nil error when no tenant is set.
func GetTenantUUID(c *gin.Context) (uuid.UUID, error) {
	tid := GetTenantID(c)
	if tid == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(tid)
}

// GetTenantCode returns the validated tenant code, or "".
func GetTenantCode(c *gin.Context) string {
	if v, ok := c.Get(TenantCodeKey); ok {
		if code, ok := v.(string); ok {
			return code
		}
	}
	return ""
}

// MustGetTenantID panics when no tenant is set. Only for handlers behind
// a required tenant middleware.
func MustGetTenantID(c *gin.Context) string {
	tid := GetTenantID(c)
	if tid == "" {
		panic("tenant_id not found in context")
	}
	return tid
}

// MustGetTenantUUID panics when no valid tenant is set.
func MustGetTenantUUID(c *gin.Context) uuid.UUID {
	id, err := GetTenantUUID(c)
	if err != nil || id == uuid.Nil {
		panic("valid tenant_id not found in context")
	}
	return id
}

// OptionalTenantMiddleware resolves the tenant when present but lets
// tenantless requests through.
func OptionalTenantMiddleware() gin.HandlerFunc {
	cfg := DefaultTenantConfig()
	cfg.Required = false
	return TenantMiddlewareWithConfig(cfg)
}
