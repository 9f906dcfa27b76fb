package auth

import (
	"fmt"

	"github.com/atelierai/platform/auth/jwt"
	"github.com/atelierai/platform/auth/password"
)

// Config holds all authentication configuration.
type Config struct {
	// JWT configures the token service.
	JWT jwt.Config `mapstructure:"jwt"`

	// Password configures password hashing.
	Password password.Config `mapstructure:"password"`

	// Revocation enables the cache-backed subject denylist consulted on
	// every Authenticate.
	Revocation bool `mapstructure:"revocation"`
}

// ApplyDefaults sets defaults on the sub-configurations.
func (c *Config) ApplyDefaults() {
	c.JWT.ApplyDefaults()
	c.Password.ApplyDefaults()
}

// Validate checks the sub-configurations.
func (c *Config) Validate() error {
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("auth.jwt: %w", err)
	}
	if err := c.Password.Validate(); err != nil {
		return fmt.Errorf("auth.password: %w", err)
	}
	return nil
}

// Describe returns a one-liner for the startup summary.
// Example: "JWT(HS256) TTL=30m0s password=bcrypt revocation=on"
func (c *Config) Describe() string {
	line := fmt.Sprintf("JWT(%s) TTL=%s password=%s", c.JWT.Method, c.JWT.AccessTokenTTL, c.Password.Algorithm)
	if c.Revocation {
		line += " revocation=on"
	}
	return line
}
