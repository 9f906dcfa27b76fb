package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/atelierai/platform/component"
	"github.com/atelierai/platform/logger"
	"github.com/atelierai/platform/redis"
	"github.com/atelierai/platform/testutil"
)

// Component is a miniredis-backed test server with a connected client.
type Component struct {
	mini    *miniredis.Miniredis
	client  *redis.Client
	started bool
	mu      sync.RWMutex
}

var _ component.Component = (*Component)(nil)
var _ testutil.TestComponent = (*Component)(nil)

// NewComponent creates a stopped test component.
func NewComponent() *Component {
	return &Component{}
}

// Client returns the client, or nil before Start.
func (c *Component) Client() *redis.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// Mini exposes the server for direct inspection.
func (c *Component) Mini() *miniredis.Miniredis {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mini
}

// FastForward advances the server clock so TTLs expire.
func (c *Component) FastForward(d time.Duration) {
	c.Mini().FastForward(d)
}

// Kill shuts the server down while leaving the client in place, so
// subsequent commands fail as they would during an outage.
func (c *Component) Kill() {
	c.Mini().Close()
}

// Name returns the component name.
func (c *Component) Name() string { return "redis-test" }

// Start launches the server and builds a client for it. The client is
// not connected until first use.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return fmt.Errorf("component already started")
	}

	mini, err := miniredis.Run()
	if err != nil {
		return fmt.Errorf("failed to start miniredis: %w", err)
	}
	client, err := redis.New(redis.Config{
		Addr:        mini.Addr(),
		MaxRetries:  -1,
		DialTimeout: "200ms",
	}, logger.NewNop())
	if err != nil {
		mini.Close()
		return err
	}

	c.mini = mini
	c.client = client
	c.started = true
	return nil
}

// Stop disconnects the client and shuts the server down.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.started {
		return nil
	}
	_ = c.client.Disconnect()
	c.mini.Close()
	c.started = false
	return nil
}

// Health reports whether the server is running.
func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.started {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// Reset flushes every key.
func (c *Component) Reset(_ context.Context) error {
	mini, err := c.running()
	if err != nil {
		return err
	}
	mini.FlushAll()
	return nil
}

// Snapshot returns key to value for all string keys.
func (c *Component) Snapshot(_ context.Context) (interface{}, error) {
	mini, err := c.running()
	if err != nil {
		return nil, err
	}
	snapshot := make(map[string]string)
	for _, key := range mini.Keys() {
		if val, err := mini.Get(key); err == nil {
			snapshot[key] = val
		}
	}
	return snapshot, nil
}

// Restore replaces the server contents with snap. TTLs are not restored.
func (c *Component) Restore(_ context.Context, snap interface{}) error {
	mini, err := c.running()
	if err != nil {
		return err
	}
	snapshot, ok := snap.(map[string]string)
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected map[string]string, got %T", snap)
	}
	mini.FlushAll()
	for key, val := range snapshot {
		if err := mini.Set(key, val); err != nil {
			return fmt.Errorf("failed to restore key %q: %w", key, err)
		}
	}
	return nil
}

func (c *Component) running() (*miniredis.Miniredis, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.started || c.mini == nil {
		return nil, fmt.Errorf("component not started")
	}
	return c.mini, nil
}
