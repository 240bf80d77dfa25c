package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"rental-ledger/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders errors handlers attached with c.Error but did not
// write themselves. Server-side failures are logged with the underlying
// cause; clients only see the public message.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		last := c.Errors.Last()

		resp, public := last.Meta.(httperr.Response)
		if !public || !last.IsType(gin.ErrorTypePublic) {
			resp = httperr.Response{}
			resp.Status, resp.Error.Message = httperr.StatusOf(last.Err)
		}
		if resp.Status >= http.StatusInternalServerError {
			slog.Error("request failed",
				"method", c.Request.Method,
				"path", c.FullPath(),
				"status", resp.Status,
				"error", last.Err.Error())
		}

		if c.Writer.Written() {
			return
		}
		c.JSON(resp.Status, resp)
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("recovered from panic",
					"panic", rec,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()))

				resp := httperr.Response{Status: http.StatusInternalServerError}
				resp.Error.Message = "Internal server error"
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()
		c.Next()
	}
}
