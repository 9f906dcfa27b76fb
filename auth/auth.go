package auth

import (
	"context"
	"errors"

	"github.com/atelierai/platform/auth/jwt"
	"github.com/atelierai/platform/auth/password"
	"github.com/atelierai/platform/authz"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong
	// password, so a caller cannot tell which one failed.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrEmailTaken means registration hit an existing account.
	ErrEmailTaken = errors.New("auth: email already registered")
	// ErrTokenRevoked means the token was issued before its subject was
	// revoked.
	ErrTokenRevoked = errors.New("auth: token revoked")
)

// TokenValidator authenticates a bearer token. The HTTP middleware depends
// on this rather than on Service.
type TokenValidator interface {
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
}

// TokenValidatorFunc adapts an ordinary function to TokenValidator.
type TokenValidatorFunc func(ctx context.Context, token string) (*jwt.Claims, error)

// Authenticate implements TokenValidator.
func (f TokenValidatorFunc) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	return f(ctx, token)
}

// IsUnauthenticated reports whether err means "not authenticated".
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrTokenRevoked) ||
		errors.Is(err, jwt.ErrTokenMalformed) ||
		errors.Is(err, jwt.ErrTokenTampered) ||
		errors.Is(err, jwt.ErrTokenExpired) ||
		errors.Is(err, authz.ErrUnauthenticated)
}

// failureReason names err for logs and metrics.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrTokenRevoked):
		return "token_revoked"
	case errors.Is(err, jwt.ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, jwt.ErrTokenTampered):
		return "token_tampered"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "token_malformed"
	case errors.Is(err, authz.ErrInactiveAccount):
		return "inactive_account"
	case errors.Is(err, authz.ErrInsufficientRole):
		return "insufficient_role"
	case errors.Is(err, authz.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, password.ErrTooShort), errors.Is(err, password.ErrTooLong):
		return "password_policy"
	default:
		return "internal"
	}
}
