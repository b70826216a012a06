package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func bodyLimitRouter(maxBytes int64, handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(BodyLimit(maxBytes))
	router.POST("/orders", handler)
	router.GET("/orders", handler)
	return router
}

func okHandler(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func TestBodyLimit(t *testing.T) {
	t.Run("passes a body within the limit", func(t *testing.T) {
		router := bodyLimitRouter(1024, okHandler)

		req := httptest.NewRequest("POST", "/orders", strings.NewReader(`{"order_no":"SO-1001"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects an oversized declared Content-Length", func(t *testing.T) {
		router := bodyLimitRouter(100, okHandler)

		req := httptest.NewRequest("POST", "/orders", strings.NewReader(strings.Repeat("x", 200)))
		req.ContentLength = 200
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
	})

	t.Run("leaves bodyless requests alone", func(t *testing.T) {
		router := bodyLimitRouter(10, okHandler)

		req := httptest.NewRequest("GET", "/orders", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("caps chunked bodies without a Content-Length", func(t *testing.T) {
		router := bodyLimitRouter(50, func(c *gin.Context) {
			buf := make([]byte, 200)
			if _, err := c.Request.Body.Read(buf); err != nil {
				c.String(http.StatusBadRequest, "body too large")
				return
			}
			c.String(http.StatusOK, "ok")
		})

		req := httptest.NewRequest("POST", "/orders", strings.NewReader(strings.Repeat("x", 100)))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
