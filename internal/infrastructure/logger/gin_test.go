package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// requestLog runs one request through GinMiddleware and returns the access
// log entry it produced.
func requestLog(t *testing.T, handler gin.HandlerFunc, req *http.Request, pre ...gin.HandlerFunc) (observer.LoggedEntry, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.DebugLevel)

	router := gin.New()
	for _, mw := range pre {
		router.Use(mw)
	}
	router.Use(GinMiddleware(zap.New(core)))
	router.Handle(req.Method, req.URL.Path, handler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	entries := recorded.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	return entries[0], w
}

func fieldMap(entry observer.LoggedEntry) map[string]zapcore.Field {
	fields := make(map[string]zapcore.Field, len(entry.Context))
	for _, f := range entry.Context {
		fields[f.Key] = f
	}
	return fields
}

func TestGinMiddleware(t *testing.T) {
	ok := func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }

	t.Run("success logs at info with request fields", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/orders", nil)
		req.Header.Set("User-Agent", "craftline-cli/2.1")

		entry, w := requestLog(t, func(c *gin.Context) {
			c.JSON(http.StatusCreated, gin.H{"order_no": "SO-1001"})
		}, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, zapcore.InfoLevel, entry.Level)

		fields := fieldMap(entry)
		assert.Equal(t, "POST", fields["method"].String)
		assert.Equal(t, "/api/v1/orders", fields["path"].String)
		assert.Equal(t, int64(http.StatusCreated), fields["status"].Integer)
		assert.Equal(t, "craftline-cli/2.1", fields["user_agent"].String)
		assert.Contains(t, fields, "latency")
		assert.Contains(t, fields, "client_ip")
		assert.Contains(t, fields, "body_size")
	})

	t.Run("4xx logs at warn", func(t *testing.T) {
		entry, w := requestLog(t, func(c *gin.Context) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing sku"})
		}, httptest.NewRequest("GET", "/api/v1/products", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, zapcore.WarnLevel, entry.Level)
	})

	t.Run("5xx logs at error", func(t *testing.T) {
		entry, _ := requestLog(t, func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db down"})
		}, httptest.NewRequest("GET", "/api/v1/stock", nil))

		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
	})

	t.Run("carries the request id set upstream", func(t *testing.T) {
		setID := func(c *gin.Context) {
			c.Set("request_id", "req-7f3a")
			c.Next()
		}

		entry, _ := requestLog(t, ok, httptest.NewRequest("GET", "/ping", nil), setID)

		assert.Equal(t, "req-7f3a", fieldMap(entry)["request_id"].String)
	})

	t.Run("query string is logged when present", func(t *testing.T) {
		entry, _ := requestLog(t, ok, httptest.NewRequest("GET", "/api/v1/products?sku=TEAK-CHAIR-01&page=2", nil))

		assert.Contains(t, fieldMap(entry)["query"].String, "sku=TEAK-CHAIR-01")
	})

	t.Run("no query field without a query string", func(t *testing.T) {
		entry, _ := requestLog(t, ok, httptest.NewRequest("GET", "/ping", nil))

		assert.NotContains(t, fieldMap(entry), "query")
	})

	t.Run("gin errors are attached", func(t *testing.T) {
		entry, _ := requestLog(t, func(c *gin.Context) {
			_ = c.Error(assert.AnError)
			c.JSON(http.StatusOK, gin.H{})
		}, httptest.NewRequest("GET", "/ping", nil))

		assert.Contains(t, fieldMap(entry), "errors")
	})
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("nil batch reference")
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest("GET", "/panic", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	entries := recorded.FilterMessage("Panic recovered").All()
	require.Len(t, entries, 1)
	assert.Contains(t, fieldMap(entries[0]), "stacktrace")
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("returns the request-scoped logger", func(t *testing.T) {
		var got *zap.Logger

		core, _ := observer.New(zapcore.InfoLevel)
		router := gin.New()
		router.Use(GinMiddleware(zap.New(core)))
		router.GET("/ping", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ping", nil))

		assert.NotNil(t, got)
	})

	t.Run("falls back to a nop logger", func(t *testing.T) {
		var got *zap.Logger

		router := gin.New()
		router.GET("/ping", func(c *gin.Context) {
			got = GetGinLogger(c)
			c.Status(http.StatusOK)
		})

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/ping", nil))

		require.NotNil(t, got)
		assert.NotPanics(t, func() { got.Info("still usable") })
	})
}
