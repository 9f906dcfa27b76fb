package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelierai/platform/logger"
	"github.com/atelierai/platform/observability"
)

const slowRequest = 500 * time.Millisecond

// RequestLogger logs every request with method, route, status and
// duration, and records it on metrics (which may be nil). Probe paths are
// neither logged nor counted.
func RequestLogger(log *logger.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	log = log.WithComponent("http")
	return func(c *gin.Context) {
		if isHealthEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(c.Request.Context(), c.Request.Method, route, status, duration)

		fields := logger.Fields(
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			logger.FieldStatus, status,
			logger.FieldDuration, duration.Milliseconds(),
			"client", c.ClientIP(),
		)
		if duration > slowRequest {
			fields["slow"] = true
		}
		if len(c.Errors) > 0 {
			fields[logger.FieldError] = c.Errors.String()
		}
		logByStatus(log.WithContext(c.Request.Context()), fields, status)
	}
}

func isHealthEndpoint(path string) bool {
	path = strings.TrimPrefix(path, "/api")
	switch path {
	case "/health", "/alive", "/ready", "/info":
		return true
	}
	return false
}

func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
