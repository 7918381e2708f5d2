package handler

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/fitshare/auth-service/internal/dto"
	"github.com/fitshare/auth-service/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (service.RateLimitDecision, error)
}

// RateLimitMiddleware creates a rate limiting middleware. Limiter failures
// let the request through.
func RateLimitMiddleware(limiter Limiter, limit int, window time.Duration, keyFunc func(*gin.Context) string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		decision, err := limiter.Allow(c.Request.Context(), keyFunc(c), limit, window)
		if err != nil {
			logger.Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		if !decision.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.ErrorResponse{
				Error:   "Too Many Requests",
				Message: "Rate limit exceeded",
			})
			return
		}

		c.Next()
	}
}

// ProviderAndIPKey limits login attempts per provider and client IP.
func ProviderAndIPKey(c *gin.Context) string {
	return "login:" + c.Param("provider") + ":" + c.ClientIP()
}
