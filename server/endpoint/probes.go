package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelierai/platform/component"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Overall status values.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

type probeResponse struct {
	Status     string             `json:"status"`
	Service    string             `json:"service"`
	Timestamp  string             `json:"timestamp"`
	Components []component.Health `json:"components,omitempty"`
}

func writeProbe(c *gin.Context, code int, service, status string, components []component.Health) {
	c.JSON(code, probeResponse{
		Status:     status,
		Service:    service,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	})
}

func check(ctx context.Context, checker HealthChecker) []component.Health {
	if checker == nil {
		return nil
	}
	return checker(ctx)
}

// Aggregate folds component states into one overall status.
func Aggregate(components []component.Health) string {
	status := StatusHealthy
	for _, ch := range components {
		switch ch.Status {
		case component.StatusUnhealthy:
			return StatusUnhealthy
		case component.StatusDegraded:
			status = StatusDegraded
		}
	}
	return status
}

// Health reports every component. An unhealthy component answers 503; a
// degraded cache is listed but still answers 200.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := check(c.Request.Context(), checker)
		status := Aggregate(components)
		code := http.StatusOK
		if status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeProbe(c, code, serviceName, status, components)
	}
}

// Readiness is Health without the component list, for load balancers.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Aggregate(check(c.Request.Context(), checker)) == StatusUnhealthy {
			writeProbe(c, http.StatusServiceUnavailable, serviceName, "not_ready", nil)
			return
		}
		writeProbe(c, http.StatusOK, serviceName, "ready", nil)
	}
}

// Liveness answers as long as the process can serve HTTP.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeProbe(c, http.StatusOK, serviceName, "alive", nil)
	}
}
