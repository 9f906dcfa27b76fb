package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atelierai/platform/cache"
	apperrors "github.com/atelierai/platform/errors"
	"github.com/atelierai/platform/logger"
)

const (
	defaultRequestsPerMinute = 10
	rateLimitWindow          = 60
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Route names the counter, so two routes never share one.
	Route string
	// RequestsPerMinute is the maximum number of requests allowed per
	// window per key. Defaults to 10.
	RequestsPerMinute int
	// KeyFunc extracts the rate limit key from a request. Defaults to client IP.
	KeyFunc func(*gin.Context) string
}

// RateLimit counts requests per key in a fixed 60-second window kept in
// the cache. The window starts with the first request, and a counter found
// without an expiry gets one on its next request. A failed increment lets
// the request through.
func RateLimit(store *cache.Store, cfg RateLimitConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = IPBasedKey
	}
	log = log.WithComponent("ratelimit")

	return func(c *gin.Context) {
		key := cache.RateLimitKey(cfg.Route, cfg.KeyFunc(c))
		ctx := c.Request.Context()

		count, err := store.IncrementWindow(ctx, key, 1, rateLimitWindow)
		if err != nil {
			if count == 0 {
				log.Debug("Rate limit check skipped", logger.Fields(logger.FieldKey, key, logger.FieldError, err.Error()))
				c.Next()
				return
			}
			log.Debug("Rate limit window not set", logger.Fields(logger.FieldKey, key, logger.FieldError, err.Error()))
		}

		if count > int64(cfg.RequestsPerMinute) {
			log.Warn("Rate limit exceeded", logger.Fields(logger.FieldKey, key, "count", count))
			c.Header("Retry-After", strconv.Itoa(rateLimitWindow))
			Abort(c, apperrors.RateLimited())
			return
		}
		c.Next()
	}
}

// IPBasedKey extracts the client IP for use as a rate limit key.
func IPBasedKey(c *gin.Context) string {
	return c.ClientIP()
}

// UserBasedKey uses the authenticated subject, falling back to client IP.
func UserBasedKey(c *gin.Context) string {
	if uid := c.GetString(ContextKeyUserID); uid != "" {
		return uid
	}
	return c.ClientIP()
}
