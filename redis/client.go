package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/atelierai/platform/logger"
	"github.com/atelierai/platform/resilience"
)

// Client is a lazily connected go-redis client. The underlying connection
// pool is created on first use and reused by every later command.
type Client struct {
	cfg  Config
	opts *goredis.Options
	log  *logger.Logger

	rdb     atomic.Pointer[goredis.Client]
	mu      sync.Mutex
	breaker *resilience.Breaker
}

// New validates cfg and returns a client that has not dialed yet.
func New(cfg Config, log *logger.Logger) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("redis config: %w", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	c := &Client{
		cfg:  cfg,
		opts: opts,
		log:  log.WithComponent("redis"),
	}
	if cfg.Breaker.MaxFailures > 0 {
		openTimeout, _ := time.ParseDuration(cfg.Breaker.OpenTimeout)
		c.breaker = resilience.NewBreaker(resilience.BreakerConfig{
			Name:        "redis",
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: openTimeout,
			IsFailure:   countsAgainstBreaker,
			OnStateChange: func(name string, from, to resilience.State) {
				c.log.Warn("Circuit breaker state changed", logger.Fields("breaker", name, "from", from.String(), "to", to.String()))
			},
		})
	}
	return c, nil
}

// Config returns the client configuration after defaults.
func (c *Client) Config() Config {
	return c.cfg
}

// Connect creates the connection pool and verifies it with PING. It is a
// no-op when already connected. On failure the pool is discarded so the
// next call tries again.
func (c *Client) Connect(ctx context.Context) error {
	_, err := c.conn(ctx)
	return err
}

// Connected reports whether a verified connection pool exists.
func (c *Client) Connected() bool {
	return c.rdb.Load() != nil
}

func (c *Client) conn(ctx context.Context) (*goredis.Client, error) {
	if rdb := c.rdb.Load(); rdb != nil {
		return rdb, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if rdb := c.rdb.Load(); rdb != nil {
		return rdb, nil
	}

	start := time.Now()
	rdb := goredis.NewClient(c.opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis connect %s: %w", c.cfg.Endpoint(), err)
	}
	c.rdb.Store(rdb)

	c.log.Info("Redis connected", logger.Fields(
		"endpoint", c.cfg.Endpoint(),
		"pool_size", c.opts.PoolSize,
		"tls", c.opts.TLSConfig != nil,
	), logger.DurationFields("connect", time.Since(start)))
	return rdb, nil
}

// Disconnect closes the connection pool. It is safe on a client that never
// connected and safe to call more than once. A later command reconnects.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rdb := c.rdb.Swap(nil)
	if rdb == nil {
		return nil
	}
	c.log.Info("Closing Redis connection")
	return rdb.Close()
}

// Ping round-trips a PING to the server, connecting first if needed.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, func(rdb *goredis.Client) error {
		pong, err := rdb.Ping(ctx).Result()
		if err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
		if pong != "PONG" {
			return fmt.Errorf("unexpected redis ping response: %s", pong)
		}
		return nil
	})
}

// Get returns the raw value at key. A missing key yields an error matching
// IsNil.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	var val []byte
	err := c.do(ctx, func(rdb *goredis.Client) (err error) {
		val, err = rdb.Get(ctx, key).Bytes()
		return err
	})
	return val, err
}

// Set stores value at key. A zero expiration stores without TTL.
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.do(ctx, func(rdb *goredis.Client) error {
		return rdb.Set(ctx, key, value, expiration).Err()
	})
}

// Del deletes keys and returns how many existed.
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	var n int64
	err := c.do(ctx, func(rdb *goredis.Client) (err error) {
		n, err = rdb.Del(ctx, keys...).Result()
		return err
	})
	return n, err
}

// Exists returns how many of keys exist.
func (c *Client) Exists(ctx context.Context, keys ...string) (int64, error) {
	var n int64
	err := c.do(ctx, func(rdb *goredis.Client) (err error) {
		n, err = rdb.Exists(ctx, keys...).Result()
		return err
	})
	return n, err
}

// IncrBy atomically adds delta to the integer at key, creating it at 0.
func (c *Client) IncrBy(ctx context.Context, key string, delta int64) (int64, error) {
	var n int64
	err := c.do(ctx, func(rdb *goredis.Client) (err error) {
		n, err = rdb.IncrBy(ctx, key, delta).Result()
		return err
	})
	return n, err
}

// IncrWithTTL adds delta to the integer at key and reads its remaining
// TTL in the same MULTI/EXEC. The TTL is negative when the key has no
// expiry.
func (c *Client) IncrWithTTL(ctx context.Context, key string, delta int64) (int64, time.Duration, error) {
	var (
		incr *goredis.IntCmd
		ttl  *goredis.DurationCmd
	)
	err := c.do(ctx, func(rdb *goredis.Client) error {
		_, err := rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
			incr = p.IncrBy(ctx, key, delta)
			ttl = p.TTL(ctx, key)
			return nil
		})
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return incr.Val(), ttl.Val(), nil
}

// Expire sets a TTL on key and reports whether the key existed.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	var ok bool
	err := c.do(ctx, func(rdb *goredis.Client) (err error) {
		ok, err = rdb.Expire(ctx, key, ttl).Result()
		return err
	})
	return ok, err
}

// TTL returns the remaining time to live of key.
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	var ttl time.Duration
	err := c.do(ctx, func(rdb *goredis.Client) (err error) {
		ttl, err = rdb.TTL(ctx, key).Result()
		return err
	})
	return ttl, err
}

// Scan runs one SCAN step. Iteration is finished when the returned cursor
// is 0.
func (c *Client) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	var (
		keys []string
		next uint64
	)
	err := c.do(ctx, func(rdb *goredis.Client) (err error) {
		keys, next, err = rdb.Scan(ctx, cursor, match, count).Result()
		return err
	})
	return keys, next, err
}

// do runs op on a connected client, through the breaker when one is
// configured.
func (c *Client) do(ctx context.Context, op func(rdb *goredis.Client) error) error {
	run := func() error {
		rdb, err := c.conn(ctx)
		if err != nil {
			return err
		}
		return op(rdb)
	}
	if c.breaker == nil {
		return run()
	}
	return c.breaker.Execute(run)
}

// BreakerState reports the breaker position; closed when none is
// configured.
func (c *Client) BreakerState() resilience.State {
	if c.breaker == nil {
		return resilience.StateClosed
	}
	return c.breaker.State()
}

// countsAgainstBreaker excludes replies that say nothing about the
// server's health.
func countsAgainstBreaker(err error) bool {
	return err != nil && !IsNil(err) &&
		!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// IsNil reports whether err is the go-redis "key does not exist" reply.
func IsNil(err error) bool {
	return errors.Is(err, goredis.Nil)
}
