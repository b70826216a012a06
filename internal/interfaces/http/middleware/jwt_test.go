package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/craftline/backend/internal/infrastructure/auth"
	"github.com/craftline/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "unit-test-access-secret-32-chars!",
		RefreshSecret:          "unit-test-refresh-secret-32-char!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "craftline-test",
		MaxRefreshCount:        10,
	})
}

func mintTestPair(svc *auth.JWTService) (*auth.TokenPair, auth.GenerateTokenInput) {
	input := auth.GenerateTokenInput{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Username:    "floor.supervisor",
		RoleIDs:     []uuid.UUID{uuid.New()},
		Permissions: []string{"inventory:adjust", "orders:read"},
	}
	pair, _ := svc.GenerateTokenPair(input)
	return pair, input
}

// authRequest sends one GET /test through a router guarded by mw, with the
// given Authorization header value ("" sends none).
func authRequest(mw gin.HandlerFunc, authorization string, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(mw)
	if handler == nil {
		handler = func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
	}
	router.GET("/test", handler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := testJWTService()
	pair, input := mintTestPair(svc)

	rec := authRequest(JWTAuthMiddleware(svc), "Bearer "+pair.AccessToken, func(c *gin.Context) {
		claims := GetJWTClaims(c)
		require.NotNil(t, claims)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, input.TenantID.String(), claims.TenantID)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMiddleware_RejectsBadCredentials(t *testing.T) {
	svc := testJWTService()

	tests := []struct {
		name          string
		authorization string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"empty bearer token", "Bearer "},
		{"garbage token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := authRequest(JWTAuthMiddleware(svc), tt.authorization, nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestJWTAuthMiddleware_ExpiredToken(t *testing.T) {
	svc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "unit-test-access-secret-32-chars!",
		AccessTokenExpiration:  -time.Hour, // minted already expired
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "craftline-test",
	})
	pair, _ := mintTestPair(svc)

	rec := authRequest(JWTAuthMiddleware(svc), "Bearer "+pair.AccessToken, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMiddleware_RefreshTokenUsedAsAccess(t *testing.T) {
	svc := testJWTService()
	pair, _ := mintTestPair(svc)

	rec := authRequest(JWTAuthMiddleware(svc), "Bearer "+pair.RefreshToken, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	svc := testJWTService()

	cfg := DefaultJWTConfig(svc)
	cfg.SkipPaths = append(cfg.SkipPaths, "/public")

	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/public", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMiddleware_SkipPathPrefixes(t *testing.T) {
	svc := testJWTService()

	cfg := DefaultJWTConfig(svc)
	cfg.SkipPathPrefixes = append(cfg.SkipPathPrefixes, "/static")

	router := gin.New()
	router.Use(JWTAuthMiddlewareWithConfig(cfg))
	router.GET("/static/assets/logo.png", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/static/assets/logo.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTAuthMiddleware_DefaultSkipPaths(t *testing.T) {
	svc := testJWTService()

	router := gin.New()
	router.Use(JWTAuthMiddleware(svc))

	paths := []string{
		"/health",
		"/healthz",
		"/ready",
		"/api/v1/health",
		"/api/v1/auth/login",
		"/api/v1/auth/refresh",
	}
	for _, path := range paths {
		router.GET(path, func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code, "path %s should bypass auth", path)
		})
	}
}

func TestJWTAuthMiddleware_ContextValues(t *testing.T) {
	svc := testJWTService()
	pair, input := mintTestPair(svc)

	rec := authRequest(JWTAuthMiddleware(svc), "Bearer "+pair.AccessToken, func(c *gin.Context) {
		assert.Equal(t, input.UserID.String(), GetJWTUserID(c))
		assert.Equal(t, input.TenantID.String(), GetJWTTenantID(c))
		assert.Equal(t, input.Username, GetJWTUsername(c))
		assert.Equal(t, input.Permissions, GetJWTPermissions(c))

		roleIDs := GetJWTRoleIDs(c)
		require.Len(t, roleIDs, 1)
		assert.Equal(t, input.RoleIDs[0].String(), roleIDs[0])

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWTContextAccessors_EmptyContext(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Nil(t, GetJWTClaims(c))
	assert.Empty(t, GetJWTUserID(c))
	assert.Empty(t, GetJWTTenantID(c))
	assert.Empty(t, GetJWTUsername(c))
	assert.Nil(t, GetJWTRoleIDs(c))
	assert.Nil(t, GetJWTPermissions(c))
	assert.Panics(t, func() { MustGetJWTClaims(c) })
}

func TestOptionalJWTAuthMiddleware(t *testing.T) {
	svc := testJWTService()
	pair, input := mintTestPair(svc)

	t.Run("no token passes with no claims", func(t *testing.T) {
		var claims *auth.Claims
		rec := authRequest(OptionalJWTAuthMiddleware(svc), "", func(c *gin.Context) {
			claims = GetJWTClaims(c)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, claims)
	})

	t.Run("valid token populates claims", func(t *testing.T) {
		var claims *auth.Claims
		rec := authRequest(OptionalJWTAuthMiddleware(svc), "Bearer "+pair.AccessToken, func(c *gin.Context) {
			claims = GetJWTClaims(c)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, claims)
		assert.Equal(t, input.UserID.String(), claims.UserID)
	})

	t.Run("invalid token passes with no claims", func(t *testing.T) {
		var claims *auth.Claims
		rec := authRequest(OptionalJWTAuthMiddleware(svc), "Bearer not-a-jwt", func(c *gin.Context) {
			claims = GetJWTClaims(c)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, claims)
	})
}

func TestJWTAuthMiddleware_CustomOnError(t *testing.T) {
	svc := testJWTService()

	called := false
	cfg := DefaultJWTConfig(svc)
	cfg.OnError = func(c *gin.Context, err error) {
		called = true
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"custom": "error"})
	}

	rec := authRequest(JWTAuthMiddlewareWithConfig(cfg), "", nil)

	assert.True(t, called)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
