package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"rental-ledger/internal/handler/httperr"
	"rental-ledger/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewRateLimiter limits requests per authenticated user, or per client IP
// for anonymous callers. rate uses the limiter format, e.g. "20-M".
func NewRateLimiter(name, rate string) (gin.HandlerFunc, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, errs.Wrapf(err, "invalid %s rate limit %q", name, rate)
	}
	instance := limiter.New(memory.NewStore(), parsed)

	return func(c *gin.Context) {
		key := name + ":" + c.ClientIP()
		if userID, ok := GetUserID(c); ok {
			key = name + ":" + userID.String()
		}

		lctx, err := instance.Get(c.Request.Context(), key)
		if err != nil {
			// Fail open.
			slog.Error("rate limiter failed", "limiter", name, "error", err.Error())
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			httperr.AbortWithError(c, http.StatusTooManyRequests, nil, "Too many requests", nil)
			return
		}
		c.Next()
	}, nil
}
