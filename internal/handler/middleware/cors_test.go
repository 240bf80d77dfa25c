//go:build unit

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rental-ledger/internal/handler/middleware"
	"rental-ledger/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.NewCORSMiddleware(config.CORSConfig{
		AllowOrigins: []string{"https://app.example.com"},
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin"},
		MaxAge:       time.Hour,
	}))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	router.GET("/api/bookings", ok)
	router.POST("/api/webhooks/stripe", ok)

	t.Run("許可されたオリジンにはヘッダーを返す", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("許可されていないオリジンは拒否する", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("Webhookはオリジンに関係なく通す", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
