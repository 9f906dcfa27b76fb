package observability

import (
	"fmt"
	"time"
)

// Config configures metric and trace export.
type Config struct {
	// Endpoint is the OTLP HTTP endpoint host:port (e.g. "localhost:4318").
	// Empty disables export.
	Endpoint string `mapstructure:"endpoint"`

	// Insecure disables TLS towards the collector.
	Insecure bool `mapstructure:"insecure"`

	Metrics bool `mapstructure:"metrics"`
	Tracing bool `mapstructure:"tracing"`

	// Interval is the metric export interval.
	Interval string `mapstructure:"interval"`

	// SampleRate is the trace sampling ratio in [0, 1].
	SampleRate float64 `mapstructure:"sample_rate"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Interval == "" {
		c.Interval = "15s"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Interval); err != nil {
		return fmt.Errorf("invalid observability interval %q: %w", c.Interval, err)
	}
	if c.SampleRate < 0 || c.SampleRate > 1 {
		return fmt.Errorf("sample_rate must be within [0, 1] (got: %v)", c.SampleRate)
	}
	return nil
}

// Enabled reports whether anything is exported.
func (c *Config) Enabled() bool {
	return c.Endpoint != "" && (c.Metrics || c.Tracing)
}

func (c *Config) interval() time.Duration {
	d, _ := time.ParseDuration(c.Interval)
	return d
}
