package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/craftline/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	type createItemBody struct {
		SKU          string `json:"sku" binding:"required"`
		ReorderLevel int    `json:"reorder_level" binding:"required,min=1"`
	}

	router := gin.New()
	router.POST("/inventory/items", func(c *gin.Context) {
		var body createItemBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	post := func(payload string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/inventory/items", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("invalid body gets per-field details", func(t *testing.T) {
		w := post(`{"sku": "", "reorder_level": 0}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		require.Len(t, resp.Error.Details, 2)

		// Field names come from json tags, not Go identifiers.
		fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
		assert.Contains(t, fields, "sku")
		assert.Contains(t, fields, "reorder_level")
	})

	t.Run("valid body passes through", func(t *testing.T) {
		w := post(`{"sku": "TEAK-CHAIR-01", "reorder_level": 10}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestValidationMessage(t *testing.T) {
	type probe struct {
		Required string `binding:"required"`
		Email    string `binding:"email"`
		Min      string `binding:"min=5"`
		Max      string `binding:"max=3"`
		Len      string `binding:"len=5"`
		UUID     string `binding:"uuid"`
		OneOf    string `binding:"oneof=IN OUT ADJUST"`
		URL      string `binding:"url"`
		Numeric  string `binding:"numeric"`
	}

	v := validator.New()
	err := v.Struct(probe{
		Email:   "not-an-email",
		Min:     "ab",
		Max:     "too long",
		Len:     "ab",
		UUID:    "not-a-uuid",
		OneOf:   "SIDEWAYS",
		URL:     "not a url",
		Numeric: "abc",
	})
	require.Error(t, err)

	want := map[string]string{
		"Required": "This field is required",
		"Email":    "Invalid email format",
		"Min":      "Must be at least 5 characters",
		"Max":      "Must be at most 3 characters",
		"Len":      "Must be exactly 5 characters",
		"UUID":     "Invalid UUID format",
		"OneOf":    "Must be one of: IN OUT ADJUST",
		"URL":      "Invalid URL format",
		"Numeric":  "Must be numeric",
	}

	for _, fieldErr := range err.(validator.ValidationErrors) {
		expected, covered := want[fieldErr.Field()]
		if !covered {
			continue
		}
		assert.Equal(t, expected, validationMessage(fieldErr), "field %s", fieldErr.Field())
	}
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "req-7f3e")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Empty(t, resp.Error.Details)
	assert.Equal(t, "req-7f3e", resp.Error.RequestID)
}
