//go:build unit

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"rental-ledger/internal/handler/httperr"
	"rental-ledger/internal/handler/middleware"
	"rental-ledger/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newErrorRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CustomRecovery(), middleware.ErrorHandler())
	return r
}

func TestErrorHandler(t *testing.T) {
	t.Run("公開エラーはそのまま返す", func(t *testing.T) {
		r := newErrorRouter()
		r.GET("/x", func(c *gin.Context) {
			httperr.Respond(c, errs.ErrForbidden)
		})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":{"message":"Forbidden"}}`, w.Body.String())
	})

	t.Run("未書き込みのエラーはステータスに変換する", func(t *testing.T) {
		r := newErrorRouter()
		r.GET("/x", func(c *gin.Context) {
			_ = c.Error(errs.Mark(errors.New("overlap"), errs.ErrDateRangeConflict))
		})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "not available")
	})

	t.Run("未分類のエラーは500", func(t *testing.T) {
		r := newErrorRouter()
		r.GET("/x", func(c *gin.Context) {
			_ = c.Error(errors.New("boom"))
		})
		w := httptest.NewRecorder()

		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "boom")
	})
}

func TestCustomRecovery(t *testing.T) {
	t.Run("panicは500に変換する", func(t *testing.T) {
		r := newErrorRouter()
		r.GET("/x", func(*gin.Context) { panic("nil map") })
		w := httptest.NewRecorder()

		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":{"message":"Internal server error"}}`, w.Body.String())
	})
}
