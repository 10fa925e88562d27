package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/zevix-io/zevix/internal/infrastructure/ratelimit"
	apperrors "github.com/zevix-io/zevix/internal/shared/errors"
	"github.com/zevix-io/zevix/internal/shared/logger"
	"github.com/zevix-io/zevix/internal/shared/utils"
)

// RateLimit enforces a per-client sliding window on the route. A nil
// limiter disables the middleware, and limiter errors fail open so a
// Redis outage never takes the API down with it.
func RateLimit(limiter ratelimit.RateLimiter, config ratelimit.RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:%s", c.ClientIP(), c.FullPath())
		allowed, err := limiter.Allow(c.Request.Context(), key, config)
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request", "key", key, "error", err)
			c.Next()
			return
		}

		if !allowed {
			utils.ErrorResponseWithError(c, &apperrors.AppError{
				Type:    apperrors.ErrorTypeForbidden,
				Reason:  "rate_limited",
				Message: "too many requests, slow down",
				Code:    429,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
