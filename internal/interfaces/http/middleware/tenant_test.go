package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/craftline/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubTenantValidator struct {
	known map[string]*TenantInfo
	err   error
}

func (v *stubTenantValidator) ValidateTenant(tenantID string) (*TenantInfo, error) {
	if v.err != nil {
		return nil, v.err
	}
	if info, ok := v.known[tenantID]; ok {
		return info, nil
	}
	return nil, errors.New("tenant not found")
}

// serveTenant runs a single GET through a router configured with the given
// middleware and returns the response plus the tenant id the handler saw.
func serveTenant(mw gin.HandlerFunc, path string, header map[string]string, pre ...gin.HandlerFunc) (*httptest.ResponseRecorder, string) {
	router := gin.New()
	for _, p := range pre {
		router.Use(p)
	}
	router.Use(mw)

	var seen string
	router.GET(path, func(c *gin.Context) {
		seen = GetTenantID(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, seen
}

func TestTenantMiddleware_HeaderExtraction(t *testing.T) {
	workshopTenant := uuid.New().String()

	tests := []struct {
		name       string
		tenantID   string
		wantStatus int
	}{
		{"valid tenant id in header", workshopTenant, http.StatusOK},
		{"missing tenant id", "", http.StatusUnauthorized},
		{"tenant id is not a uuid", "crafts-co", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.tenantID != "" {
				headers[TenantHeaderKey] = tt.tenantID
			}
			w, seen := serveTenant(TenantMiddleware(), "/test", headers)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.tenantID, seen)
			}
		})
	}
}

func TestTenantMiddleware_JWTExtraction(t *testing.T) {
	tenantID := uuid.New().String()

	setClaim := func(c *gin.Context) {
		c.Set("jwt_tenant_id", tenantID)
		c.Next()
	}

	w, seen := serveTenant(TenantMiddleware(), "/test", nil, setClaim)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tenantID, seen)
}

func TestTenantMiddleware_JWTOverridesHeader(t *testing.T) {
	fromJWT := uuid.New().String()
	fromHeader := uuid.New().String()

	setClaim := func(c *gin.Context) {
		c.Set("jwt_tenant_id", fromJWT)
		c.Next()
	}

	w, seen := serveTenant(TenantMiddleware(), "/test",
		map[string]string{TenantHeaderKey: fromHeader}, setClaim)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, fromJWT, seen, "claim source outranks the header")
}

func TestTenantMiddleware_SkipPaths(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		skipPaths  []string
		wantStatus int
	}{
		{"health endpoint skipped", "/health", []string{"/health"}, http.StatusOK},
		{"api health endpoint skipped", "/api/v1/health", []string{"/api/v1/health"}, http.StatusOK},
		{"metrics endpoint skipped", "/metrics", []string{"/metrics"}, http.StatusOK},
		{"nested health path skipped", "/health/ready", []string{"/health"}, http.StatusOK},
		{"other paths still require tenant", "/api/orders", []string{"/health"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultTenantConfig()
			cfg.SkipPaths = tt.skipPaths
			w, _ := serveTenant(TenantMiddlewareWithConfig(cfg), tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestTenantMiddleware_OptionalTenant(t *testing.T) {
	w, seen := serveTenant(OptionalTenantMiddleware(), "/test", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, seen)
}

func TestTenantMiddleware_WithValidator(t *testing.T) {
	knownTenant := uuid.New().String()
	unknownTenant := uuid.New().String()

	validator := &stubTenantValidator{
		known: map[string]*TenantInfo{
			knownTenant: {ID: uuid.MustParse(knownTenant), Code: "WORKSHOP"},
		},
	}

	tests := []struct {
		name       string
		tenantID   string
		wantStatus int
		wantCode   string
	}{
		{"known tenant passes", knownTenant, http.StatusOK, "WORKSHOP"},
		{"unknown tenant rejected", unknownTenant, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			cfg := DefaultTenantConfig()
			cfg.Validator = validator
			router.Use(TenantMiddlewareWithConfig(cfg))

			var code string
			router.GET("/test", func(c *gin.Context) {
				code = GetTenantCode(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(TenantHeaderKey, tt.tenantID)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantCode, code)
			}
		})
	}
}

func TestTenantFromSubdomain(t *testing.T) {
	tests := []struct {
		name       string
		host       string
		baseDomain string
		want       string
	}{
		{"simple subdomain", "acme.craftline.io", "craftline.io", "acme"},
		{"subdomain with port", "acme.craftline.io:8080", "craftline.io", "acme"},
		{"bare domain", "craftline.io", "craftline.io", ""},
		{"www is not a tenant", "www.craftline.io", "craftline.io", ""},
		{"foreign domain", "acme.other.com", "craftline.io", ""},
		{"multi-level takes leftmost label", "app.acme.craftline.io", "craftline.io", "app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tenantFromSubdomain(tt.host, tt.baseDomain))
		})
	}
}

func TestGetTenantID(t *testing.T) {
	tenantID := uuid.New().String()

	router := gin.New()
	router.Use(TenantMiddleware())
	router.GET("/test", func(c *gin.Context) {
		assert.Equal(t, tenantID, GetTenantID(c))

		id, err := GetTenantUUID(c)
		require.NoError(t, err)
		assert.Equal(t, uuid.MustParse(tenantID), id)

		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(TenantHeaderKey, tenantID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMustGetTenant_PanicsWithoutTenant(t *testing.T) {
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		assert.Panics(t, func() { MustGetTenantID(c) })
		assert.Panics(t, func() { MustGetTenantUUID(c) })
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDefaultTenantConfig(t *testing.T) {
	cfg := DefaultTenantConfig()

	assert.True(t, cfg.HeaderEnabled)
	assert.True(t, cfg.JWTEnabled)
	assert.False(t, cfg.SubdomainEnabled)
	assert.Empty(t, cfg.BaseDomain)
	assert.True(t, cfg.Required)
	assert.Nil(t, cfg.Validator)
	assert.Nil(t, cfg.Logger)
	assert.Contains(t, cfg.SkipPaths, "/health")
	assert.Contains(t, cfg.SkipPaths, "/metrics")
}

func TestTenantMiddleware_ContextPropagation(t *testing.T) {
	tenantID := uuid.New().String()

	router := gin.New()
	router.Use(TenantMiddleware())
	router.GET("/test", func(c *gin.Context) {
		// Service-layer code reads the tenant from the request context.
		assert.Equal(t, tenantID, logger.GetTenantID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(TenantHeaderKey, tenantID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTenantMiddleware_DisabledSources(t *testing.T) {
	tenantID := uuid.New().String()

	t.Run("header source disabled", func(t *testing.T) {
		cfg := DefaultTenantConfig()
		cfg.HeaderEnabled = false
		cfg.Required = false

		w, seen := serveTenant(TenantMiddlewareWithConfig(cfg), "/test",
			map[string]string{TenantHeaderKey: tenantID})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, seen)
	})

	t.Run("jwt source disabled", func(t *testing.T) {
		setClaim := func(c *gin.Context) {
			c.Set("jwt_tenant_id", tenantID)
			c.Next()
		}

		cfg := DefaultTenantConfig()
		cfg.JWTEnabled = false
		cfg.Required = false

		w, seen := serveTenant(TenantMiddlewareWithConfig(cfg), "/test", nil, setClaim)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, seen)
	})
}

func TestTenantMiddleware_ValidatorError(t *testing.T) {
	validator := &stubTenantValidator{err: errors.New("database connection failed")}

	cfg := DefaultTenantConfig()
	cfg.Validator = validator

	w, _ := serveTenant(TenantMiddlewareWithConfig(cfg), "/test",
		map[string]string{TenantHeaderKey: uuid.New().String()})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
