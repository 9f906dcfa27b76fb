package password

import (
	"fmt"
	"strings"
)

// Algorithm represents supported password hashing algorithms.
type Algorithm string

const (
	AlgorithmBcrypt   Algorithm = "bcrypt"
	AlgorithmArgon2id Algorithm = "argon2id"
)

// Config configures password hashing behavior.
type Config struct {
	// Algorithm selects the hashing algorithm for new hashes (default: "bcrypt").
	Algorithm Algorithm `mapstructure:"algorithm"`

	// BcryptCost is the bcrypt cost parameter (default: 12, range: 4-31).
	BcryptCost int `mapstructure:"bcrypt_cost"`

	Argon2Time    uint32 `mapstructure:"argon2_time"`
	Argon2Memory  uint32 `mapstructure:"argon2_memory"`
	Argon2Threads uint8  `mapstructure:"argon2_threads"`

	// MinLength is the minimum password length (default: 8).
	MinLength int `mapstructure:"min_length"`
}

// ApplyDefaults sets sensible defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Algorithm == "" {
		c.Algorithm = AlgorithmBcrypt
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.Argon2Time == 0 {
		c.Argon2Time = 1
	}
	if c.Argon2Memory == 0 {
		c.Argon2Memory = 64 * 1024
	}
	if c.Argon2Threads == 0 {
		c.Argon2Threads = 4
	}
	if c.MinLength == 0 {
		c.MinLength = 8
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmBcrypt, AlgorithmArgon2id:
	default:
		return fmt.Errorf("unsupported algorithm: %s (use bcrypt or argon2id)", c.Algorithm)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("bcrypt_cost must be between 4 and 31 (got: %d)", c.BcryptCost)
	}
	if c.MinLength < 1 || c.MinLength > bcryptMaxBytes {
		return fmt.Errorf("min_length must be between 1 and %d (got: %d)", bcryptMaxBytes, c.MinLength)
	}
	if c.Argon2Memory > maxArgon2Memory {
		return fmt.Errorf("argon2_memory must be <= %d KiB (got: %d)", maxArgon2Memory, c.Argon2Memory)
	}
	return nil
}

// NewHasher builds the configured Hasher. New hashes use cfg.Algorithm;
// Verify recognises both formats so switching algorithms does not lock
// out existing users, and NeedsRehash flags hashes in the old format.
func NewHasher(cfg Config) Hasher {
	cfg.ApplyDefaults()
	bc := NewBcryptHasher(WithCost(cfg.BcryptCost), WithBcryptMinLength(cfg.MinLength))
	ar := NewArgon2Hasher(
		WithArgon2Time(cfg.Argon2Time),
		WithArgon2Memory(cfg.Argon2Memory),
		WithArgon2Threads(cfg.Argon2Threads),
		WithArgon2MinLength(cfg.MinLength),
	)
	if cfg.Algorithm == AlgorithmArgon2id {
		return &multiHasher{primary: ar, bcrypt: bc, argon2: ar}
	}
	return &multiHasher{primary: bc, bcrypt: bc, argon2: ar}
}

type multiHasher struct {
	primary Hasher
	bcrypt  *BcryptHasher
	argon2  *Argon2Hasher
}

func (m *multiHasher) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *multiHasher) Verify(password, hash string) bool {
	return m.forHash(hash).Verify(password, hash)
}

func (m *multiHasher) NeedsRehash(hash string) bool {
	if m.forHash(hash) != m.primary {
		return true
	}
	return m.primary.NeedsRehash(hash)
}

func (m *multiHasher) forHash(hash string) Hasher {
	if strings.HasPrefix(hash, argon2Prefix) {
		return m.argon2
	}
	return m.bcrypt
}
