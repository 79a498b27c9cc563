package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taskverse/taskverse-backend/internal/api/http/respond"
	"github.com/taskverse/taskverse-backend/internal/ratelimit"
)

// SessionHeader identifies the client session for rate limiting; requests
// without it fall back to the client IP.
const SessionHeader = "X-Session-Id"

// RateLimit gates every request through the fixed-window limiter and attaches
// the X-RateLimit-* headers to the response whether or not the request is
// allowed. A failing counter store lets the request through rather than
// taking the API down with it.
func RateLimit(limiter *ratelimit.Limiter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := strings.TrimSpace(c.GetHeader(SessionHeader))
		if session == "" {
			session = c.ClientIP()
		}

		res, err := limiter.Allow(c.Request.Context(), session)
		if err != nil {
			log.Warn("rate limit store unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.Reset, 10))

		if !res.Allowed {
			respond.Error(c, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}

		c.Next()
	}
}
