// Package password hashes and verifies user passwords.
//
// Two adaptive, salted algorithms are available behind the Hasher
// interface:
//   - BcryptHasher: the default, compatible with existing stored hashes
//   - Argon2Hasher: argon2id in the PHC string format
//
// Usage:
//
//	hasher := password.NewHasher(cfg)
//	hash, err := hasher.Hash("correct horse")
//	ok := hasher.Verify("correct horse", hash)
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrTooShort is returned by Hash when the password is below the policy minimum.
	ErrTooShort = errors.New("password: too short")
	// ErrTooLong is returned by Hash when the password exceeds what the algorithm accepts.
	ErrTooLong = errors.New("password: too long")
)

// Hasher hashes and verifies passwords. Implementations are stateless and
// safe for concurrent use.
type Hasher interface {
	// Hash returns a salted one-way hash of password. A fresh salt is
	// drawn on every call, so hashing the same input twice gives
	// different strings that both verify.
	Hash(password string) (string, error)

	// Verify reports whether password matches hash. A malformed hash
	// yields false, never a panic.
	Verify(password, hash string) bool

	// NeedsRehash reports whether hash was produced with weaker
	// parameters than the hasher currently uses.
	NeedsRehash(hash string) bool
}

// bcryptMaxBytes is the input limit of bcrypt; longer inputs are rejected
// rather than silently truncated.
const bcryptMaxBytes = 72

// BcryptHasher implements Hasher using bcrypt.
type BcryptHasher struct {
	cost      int
	minLength int
}

// BcryptOption configures the bcrypt hasher.
type BcryptOption func(*BcryptHasher)

// WithCost sets the bcrypt cost parameter (default: 12, range: 4-31).
func WithCost(cost int) BcryptOption {
	return func(h *BcryptHasher) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			h.cost = cost
		}
	}
}

// WithBcryptMinLength sets the minimum accepted password length.
func WithBcryptMinLength(n int) BcryptOption {
	return func(h *BcryptHasher) { h.minLength = n }
}

// NewBcryptHasher creates a bcrypt-based password hasher.
func NewBcryptHasher(opts ...BcryptOption) *BcryptHasher {
	h := &BcryptHasher{cost: 12, minLength: 8}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	if len(password) < h.minLength {
		return "", fmt.Errorf("%w: minimum length is %d characters", ErrTooShort, h.minLength)
	}
	if len(password) > bcryptMaxBytes {
		return "", fmt.Errorf("%w: maximum length is %d bytes", ErrTooLong, bcryptMaxBytes)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(password, hash string) bool {
	if len(password) > bcryptMaxBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *BcryptHasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost < h.cost
}
