package middleware

import (
	"log/slog"
	"slices"
	"strings"

	"rental-ledger/internal/pkg/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Headers the browser checkout flow cannot work without.
var requiredCORSHeaders = []string{"Authorization", "Content-Type", "Idempotency-Key"}

// NewCORSMiddleware serves the renter-facing routes. Processor webhooks are
// server to server and skip CORS entirely.
func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowHeaders := slices.Clone(cfg.AllowHeaders)
	for _, h := range requiredCORSHeaders {
		if !slices.ContainsFunc(allowHeaders, func(v string) bool { return strings.EqualFold(v, h) }) {
			allowHeaders = append(allowHeaders, h)
		}
	}

	handler := cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     allowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})
	slog.Info("CORS middleware initialized", "allow_origins", cfg.AllowOrigins, "allow_headers", allowHeaders)

	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/webhooks/") {
			c.Next()
			return
		}
		handler(c)
	}
}
