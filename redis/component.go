package redis

import (
	"context"
	"fmt"

	"github.com/atelierai/platform/component"
	"github.com/atelierai/platform/logger"
)

// Component manages the client lifecycle in the component registry.
//
// Unless Config.Required is set, an unreachable server does not fail
// startup: the cache layer fails open, so the component only reports
// itself degraded.
type Component struct {
	client *Client
	log    *logger.Logger
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent wraps an already constructed client.
func NewComponent(client *Client, log *logger.Logger) *Component {
	return &Component{client: client, log: log.WithComponent("redis")}
}

// Client returns the managed client.
func (c *Component) Client() *Client { return c.client }

// Name returns the component name.
func (c *Component) Name() string { return "redis" }

// Start connects eagerly so the first request does not pay for the dial.
func (c *Component) Start(ctx context.Context) error {
	if err := c.client.Connect(ctx); err != nil {
		if c.client.cfg.Required {
			return fmt.Errorf("redis start: %w", err)
		}
		c.log.Warn("Redis unavailable, continuing without cache", logger.Fields(logger.FieldError, err.Error()))
		return nil
	}
	c.log.Info("Redis component started")
	return nil
}

// Stop closes the connection pool.
func (c *Component) Stop(_ context.Context) error {
	c.log.Info("Redis component stopping")
	return c.client.Disconnect()
}

// Health pings the server.
func (c *Component) Health(ctx context.Context) component.Health {
	if err := c.client.Ping(ctx); err != nil {
		status := component.StatusDegraded
		if c.client.cfg.Required {
			status = component.StatusUnhealthy
		}
		return component.Health{
			Name:    c.Name(),
			Status:  status,
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Describe returns infrastructure summary info for the startup log.
func (c *Component) Describe() component.Description {
	return component.Description{
		Type:    "redis",
		Details: fmt.Sprintf("%s pool=%d", c.client.cfg.Endpoint(), c.client.cfg.PoolSize),
	}
}
