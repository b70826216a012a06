package middleware

import (
	"net/http"
	"strings"

	"github.com/craftline/backend/internal/infrastructure/auth"
	"github.com/craftline/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys under which the middleware stores claim values.
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "jwt_user_id"
	JWTTenantIDKey = "jwt_tenant_id"
	JWTUsernameKey = "jwt_username"
	JWTRoleIDsKey  = "jwt_role_ids"
	JWTPermissions = "jwt_permissions"
	AuthHeaderKey  = "Authorization"
	BearerPrefix   = "Bearer "
)

// JWTMiddlewareConfig configures the bearer auth middleware.
type JWTMiddlewareConfig struct {
	// JWTService validates access tokens. Required.
	JWTService *auth.JWTService
	// TokenBlacklist, when set, rejects revoked tokens.
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths bypass authentication on exact match.
	SkipPaths []string
	// SkipPathPrefixes bypass authentication on prefix match.
	SkipPathPrefixes []string
	// OnError replaces the default 401 response when set.
	OnError func(c *gin.Context, err error)
	// Logger, when set, records auth failures and blacklist lookup errors.
	Logger *zap.Logger
}

// DefaultJWTConfig skips the usual unauthenticated surface: health probes
// and the auth endpoints themselves.
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/metrics",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api-docs",
		},
	}
}

// JWTAuthMiddleware builds the middleware with the default config.
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig enforces bearer authentication. Valid claims
// are stored on the gin context and propagated into the request context so
// log lines downstream carry user and tenant ids.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if pathSkipsAuth(cfg, c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenString, err := bearerToken(c)
		if err != nil {
			rejectUnauthenticated(c, cfg, err, "Malformed authorization header")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			rejectUnauthenticated(c, cfg, err, "Token validation failed")
			return
		}

		if cfg.TokenBlacklist != nil && revoked(c, cfg, claims) {
			return
		}

		storeClaims(c, claims)

		// Propagate identity into the request context for log correlation.
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithUserID(ctx, log, claims.UserID)
		ctx, _ = logger.WithTenantID(ctx, log, claims.TenantID)
		c.Request = c.Request.WithContext(ctx)

		if cfg.Logger != nil {
			cfg.Logger.Debug("JWT authentication successful",
				zap.String("user_id", claims.UserID),
				zap.String("tenant_id", claims.TenantID),
				zap.String("username", claims.Username),
			)
		}

		c.Next()
	}
}

func pathSkipsAuth(cfg JWTMiddlewareConfig, path string) bool {
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" || !strings.HasPrefix(header, BearerPrefix) {
		return "", auth.ErrInvalidToken
	}
	token := strings.TrimPrefix(header, BearerPrefix)
	if token == "" {
		return "", auth.ErrInvalidToken
	}
	return token, nil
}

// revoked consults the blacklist, first per-token then per-user. Lookup
// failures are logged and the request proceeds (fail open); only a
// confirmed revocation aborts.
func revoked(c *gin.Context, cfg JWTMiddlewareConfig, claims *auth.Claims) bool {
	ctx := c.Request.Context()

	if claims.ID != "" {
		blacklisted, err := cfg.TokenBlacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check token blacklist",
					zap.String("jti", claims.ID),
					zap.Error(err))
			}
		} else if blacklisted {
			rejectUnauthenticated(c, cfg, auth.ErrTokenBlacklisted, "Token has been revoked")
			return true
		}
	}

	if claims.UserID != "" {
		invalidated, err := cfg.TokenBlacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("Failed to check user token invalidation",
					zap.String("user_id", claims.UserID),
					zap.Error(err))
			}
		} else if invalidated {
			rejectUnauthenticated(c, cfg, auth.ErrTokenBlacklisted, "User session has been invalidated")
			return true
		}
	}

	return false
}

func storeClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTUserIDKey, claims.UserID)
	c.Set(JWTTenantIDKey, claims.TenantID)
	c.Set(JWTUsernameKey, claims.Username)
	c.Set(JWTRoleIDsKey, claims.RoleIDs)
	c.Set(JWTPermissions, claims.Permissions)
}

func rejectUnauthenticated(c *gin.Context, cfg JWTMiddlewareConfig, err error, message string) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	if cfg.Logger != nil {
		cfg.Logger.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	code, msg := "UNAUTHORIZED", "Authentication required"
	switch err {
	case auth.ErrExpiredToken:
		code, msg = "TOKEN_EXPIRED", "Token has expired"
	case auth.ErrInvalidToken:
		code, msg = "INVALID_TOKEN", "Invalid token"
	case auth.ErrInvalidTokenType:
		code, msg = "INVALID_TOKEN_TYPE", "Invalid token type"
	case auth.ErrTokenNotYetValid:
		code, msg = "TOKEN_NOT_VALID", "Token is not yet valid"
	case auth.ErrTokenBlacklisted:
		code, msg = "TOKEN_REVOKED", "Token has been revoked"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": msg,
		},
	})
}

// GetJWTClaims returns the claims stored by the middleware, or nil.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// MustGetJWTClaims returns the stored claims and panics when absent. Only
// for handlers behind the auth middleware.
func MustGetJWTClaims(c *gin.Context) *auth.Claims {
	claims := GetJWTClaims(c)
	if claims == nil {
		panic("jwt claims not found in context")
	}
	return claims
}

// GetJWTUserID returns the authenticated user id, or "".
func GetJWTUserID(c *gin.Context) string {
	if v, ok := c.Get(JWTUserIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetJWTTenantID returns the authenticated tenant id, or "".
func GetJWTTenantID(c *gin.Context) string {
	if v, ok := c.Get(JWTTenantIDKey); ok {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetJWTUsername returns the authenticated username, or "".
func GetJWTUsername(c *gin.Context) string {
	if v, ok := c.Get(JWTUsernameKey); ok {
		if u, ok := v.(string); ok {
			return u
		}
	}
	return ""
}

// GetJWTRoleIDs returns the role ids from the claims, or nil.
func GetJWTRoleIDs(c *gin.Context) []string {
	if v, ok := c.Get(JWTRoleIDsKey); ok {
		if ids, ok := v.([]string); ok {
			return ids
		}
	}
	return nil
}

// GetJWTPermissions returns the permissions from the claims, or nil.
func GetJWTPermissions(c *gin.Context) []string {
	if v, ok := c.Get(JWTPermissions); ok {
		if perms, ok := v.([]string); ok {
			return perms
		}
	}
	return nil
}

// OptionalJWTAuthMiddleware extracts claims when a valid token is present
// but never rejects the request.
func OptionalJWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			c.Next()
			return
		}

		claims, err := jwtService.ValidateAccessToken(tokenString)
		if err == nil {
			storeClaims(c, claims)
		}

		c.Next()
	}
}
