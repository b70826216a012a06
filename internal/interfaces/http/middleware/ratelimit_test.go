package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// hit fires one request at the router from the given remote address.
func hit(router *gin.Engine, method, path, addr string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if addr != "" {
		req.RemoteAddr = addr
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func okRouter(mw gin.HandlerFunc, method, path string) *gin.Engine {
	router := gin.New()
	router.Use(mw)
	router.Handle(method, path, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func TestRateLimiter(t *testing.T) {
	t.Run("tokens run out at the limit", func(t *testing.T) {
		limiter := NewRateLimiter(3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, limiter.Allow("client"), "request %d", i+1)
		}
		assert.False(t, limiter.Allow("client"))
	})

	t.Run("clients have independent buckets", func(t *testing.T) {
		limiter := NewRateLimiter(2, time.Minute)

		limiter.Allow("clientA")
		limiter.Allow("clientA")
		assert.False(t, limiter.Allow("clientA"))

		assert.True(t, limiter.Allow("clientB"))
	})

	t.Run("bucket refills after the window", func(t *testing.T) {
		limiter := NewRateLimiter(2, 50*time.Millisecond)

		limiter.Allow("client")
		limiter.Allow("client")
		assert.False(t, limiter.Allow("client"))

		time.Sleep(60 * time.Millisecond)

		assert.True(t, limiter.Allow("client"))
	})

	t.Run("remaining counts down", func(t *testing.T) {
		limiter := NewRateLimiter(5, time.Minute)

		assert.Equal(t, 5, limiter.Remaining("client"))
		limiter.Allow("client")
		limiter.Allow("client")
		assert.Equal(t, 3, limiter.Remaining("client"))
	})

	t.Run("concurrent callers never exceed the limit", func(t *testing.T) {
		limiter := NewRateLimiter(100, time.Minute)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			allowed int
		)
		for i := 0; i < 150; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Allow("shared") {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 100, allowed)
	})
}

func TestRateLimit(t *testing.T) {
	t.Run("within limit passes, past limit gets 429", func(t *testing.T) {
		router := okRouter(RateLimit(NewRateLimiter(2, time.Minute)), http.MethodGet, "/test")

		for i := 0; i < 2; i++ {
			assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/test", "", nil).Code)
		}

		w := hit(router, http.MethodGet, "/test", "", nil)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("tenant header feeds the bucket key", func(t *testing.T) {
		router := okRouter(RateLimit(NewRateLimiter(1, time.Minute)), http.MethodGet, "/test")
		workshop := map[string]string{"X-Tenant-ID": "tenant1"}
		studio := map[string]string{"X-Tenant-ID": "tenant2"}

		assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/test", "", workshop).Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(router, http.MethodGet, "/test", "", workshop).Code)
		assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/test", "", studio).Code)
	})
}

func TestRateLimitByKey(t *testing.T) {
	byUser := func(c *gin.Context) string { return c.GetHeader("X-User-ID") }
	router := okRouter(RateLimitByKey(NewRateLimiter(1, time.Minute), byUser), http.MethodGet, "/test")
	user := map[string]string{"X-User-ID": "user1"}

	assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/test", "", user).Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(router, http.MethodGet, "/test", "", user).Code)
}

func TestAuthRateLimit(t *testing.T) {
	const addr = "192.168.1.100:12345"

	t.Run("blocked logins report the auth-specific code", func(t *testing.T) {
		router := okRouter(AuthRateLimit(NewRateLimiter(3, time.Minute)), http.MethodPost, "/login")

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, hit(router, http.MethodPost, "/login", addr, nil).Code)
		}

		w := hit(router, http.MethodPost, "/login", addr, nil)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "AUTH_RATE_LIMIT_EXCEEDED")
		assert.Contains(t, w.Body.String(), "Too many authentication attempts")
	})

	t.Run("responses carry rate limit headers", func(t *testing.T) {
		router := okRouter(AuthRateLimit(NewRateLimiter(5, time.Minute)), http.MethodPost, "/login")

		w := hit(router, http.MethodPost, "/login", addr, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "5", w.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "4", w.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("blocked responses carry Retry-After", func(t *testing.T) {
		router := okRouter(AuthRateLimit(NewRateLimiter(1, time.Minute)), http.MethodPost, "/login")

		hit(router, http.MethodPost, "/login", addr, nil)
		w := hit(router, http.MethodPost, "/login", addr, nil)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "60", w.Header().Get("Retry-After"))
	})

	t.Run("each client IP has its own bucket", func(t *testing.T) {
		router := okRouter(AuthRateLimit(NewRateLimiter(2, time.Minute)), http.MethodPost, "/login")

		for i := 0; i < 2; i++ {
			assert.Equal(t, http.StatusOK, hit(router, http.MethodPost, "/login", "192.168.1.1:12345", nil).Code)
		}
		assert.Equal(t, http.StatusTooManyRequests, hit(router, http.MethodPost, "/login", "192.168.1.1:12345", nil).Code)
		assert.Equal(t, http.StatusOK, hit(router, http.MethodPost, "/login", "192.168.1.2:12345", nil).Code)
	})

	t.Run("auth bucket is isolated from the global one", func(t *testing.T) {
		authLimiter := NewRateLimiter(2, time.Minute)
		globalLimiter := NewRateLimiter(100, time.Minute)

		router := gin.New()
		authGroup := router.Group("/auth")
		authGroup.Use(AuthRateLimit(authLimiter))
		authGroup.POST("/login", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
		router.Use(RateLimit(globalLimiter))
		router.GET("/api/data", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"data": "ok"})
		})

		for i := 0; i < 2; i++ {
			assert.Equal(t, http.StatusOK, hit(router, http.MethodPost, "/auth/login", addr, nil).Code)
		}
		assert.Equal(t, http.StatusTooManyRequests, hit(router, http.MethodPost, "/auth/login", addr, nil).Code)

		// Exhausting the login bucket must not starve the rest of the API.
		assert.Equal(t, http.StatusOK, hit(router, http.MethodGet, "/api/data", addr, nil).Code)
	})
}
