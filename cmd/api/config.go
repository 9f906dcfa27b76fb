package main

import (
	"fmt"

	"github.com/atelierai/platform/api"
	"github.com/atelierai/platform/auth"
	"github.com/atelierai/platform/config"
	"github.com/atelierai/platform/database"
	"github.com/atelierai/platform/observability"
	"github.com/atelierai/platform/redis"
	"github.com/atelierai/platform/server"
)

// APIConfig is the full configuration of the api binary.
type APIConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Auth          auth.Config          `yaml:"auth" mapstructure:"auth"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Database      database.Config      `yaml:"database" mapstructure:"database"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	RateLimit     api.RateLimitConfig  `yaml:"ratelimit" mapstructure:"ratelimit"`
}

// ApplyDefaults fills every section.
func (c *APIConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Auth.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Database.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.RateLimit.ApplyDefaults()
}

// Validate checks every section.
func (c *APIConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("observability: %w", err)
	}
	return nil
}

// loadConfig reads config.yml, .env and the environment.
func loadConfig(configFile, envFile string) (*APIConfig, error) {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg := &APIConfig{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
