package redis

import (
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/atelierai/platform/security"
)

// Config holds cache server connection configuration.
type Config struct {
	// URL is a redis:// or rediss:// URL. When set it takes precedence
	// over Addr, Password and DB.
	URL string `mapstructure:"url"`

	// Addr is the server address (host:port).
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// PoolSize is the maximum number of socket connections.
	PoolSize int `mapstructure:"pool_size"`

	// MinIdleConns is the minimum number of idle connections.
	MinIdleConns int `mapstructure:"min_idle_conns"`

	// MaxRetries is how many times go-redis resends a failed command.
	// Zero (the default) and -1 both mean never; a resent INCRBY can
	// count twice.
	MaxRetries int `mapstructure:"max_retries"`

	// Durations in time.ParseDuration syntax.
	DialTimeout  string `mapstructure:"dial_timeout"`
	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`

	// Required makes the service refuse to start, and report unhealthy,
	// while the server is unreachable. By default the cache is optional
	// and its outage only degrades the service.
	Required bool `mapstructure:"required"`

	// TLS enables TLS towards the server. rediss:// URLs enable it too.
	TLS *security.TLSConfig `mapstructure:"tls"`

	// Breaker fails commands fast while the server keeps failing.
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig configures the client's circuit breaker. A zero
// MaxFailures disables it.
type BreakerConfig struct {
	MaxFailures int    `mapstructure:"max_failures"`
	OpenTimeout string `mapstructure:"open_timeout"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.URL == "" && c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.PoolSize <= 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns <= 0 {
		c.MinIdleConns = 2
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "5s"
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "3s"
	}
	if c.WriteTimeout == "" {
		c.WriteTimeout = "3s"
	}
	if c.Breaker.MaxFailures > 0 && c.Breaker.OpenTimeout == "" {
		c.Breaker.OpenTimeout = "10s"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if c.URL != "" {
		if _, err := goredis.ParseURL(c.URL); err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
	} else if c.Addr == "" {
		return fmt.Errorf("redis url or addr is required")
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be > 0")
	}
	if c.MaxRetries < -1 {
		return fmt.Errorf("max_retries must be >= -1 (got: %d)", c.MaxRetries)
	}
	for name, v := range map[string]string{
		"dial_timeout":  c.DialTimeout,
		"read_timeout":  c.ReadTimeout,
		"write_timeout": c.WriteTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	if c.Breaker.MaxFailures < 0 {
		return fmt.Errorf("breaker.max_failures must be >= 0 (got: %d)", c.Breaker.MaxFailures)
	}
	if c.Breaker.MaxFailures > 0 {
		if _, err := time.ParseDuration(c.Breaker.OpenTimeout); err != nil {
			return fmt.Errorf("invalid breaker.open_timeout %q: %w", c.Breaker.OpenTimeout, err)
		}
	}
	if err := c.TLS.Validate(); err != nil {
		return err
	}
	return nil
}

// Options converts the config into go-redis options.
func (c *Config) Options() (*goredis.Options, error) {
	var opts *goredis.Options
	if c.URL != "" {
		parsed, err := goredis.ParseURL(c.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &goredis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB}
	}

	opts.PoolSize = c.PoolSize
	opts.MinIdleConns = c.MinIdleConns
	// go-redis reads 0 as "use the default of 3".
	opts.MaxRetries = -1
	if c.MaxRetries > 0 {
		opts.MaxRetries = c.MaxRetries
	}
	opts.DialTimeout, _ = time.ParseDuration(c.DialTimeout)
	opts.ReadTimeout, _ = time.ParseDuration(c.ReadTimeout)
	opts.WriteTimeout, _ = time.ParseDuration(c.WriteTimeout)

	if c.TLS.IsEnabled() {
		tlsCfg, err := c.TLS.Build()
		if err != nil {
			return nil, fmt.Errorf("redis tls: %w", err)
		}
		opts.TLSConfig = tlsCfg
	}
	return opts, nil
}

// Endpoint returns a loggable description of the target without credentials.
func (c *Config) Endpoint() string {
	opts, err := c.Options()
	if err != nil {
		return c.Addr
	}
	return fmt.Sprintf("%s/%d", opts.Addr, opts.DB)
}
