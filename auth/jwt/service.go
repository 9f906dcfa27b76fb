// Package jwt issues and verifies the signed access tokens that carry a
// user's identity and role between requests.
//
// A token is three base64url segments, header.payload.signature. Verify
// checks the signature over the received header.payload text before any
// claim is decoded, so a token that fails integrity is never partially
// trusted.
//
//	svc, err := jwt.NewService(cfg)
//	token, err := svc.Issue(jwt.Claims{...}, cfg.AccessTokenTTL)
//	claims, err := svc.Verify(token)
package jwt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMalformed means the token is not a well-formed JWT or its
	// claims are unusable (no subject, no expiry, wrong issuer).
	ErrTokenMalformed = errors.New("jwt: token malformed")
	// ErrTokenTampered means the signature does not match the content.
	ErrTokenTampered = errors.New("jwt: token signature invalid")
	// ErrTokenExpired means the token was authentic but exp has passed.
	ErrTokenExpired = errors.New("jwt: token expired")
	// ErrInvalidTTL is returned by Issue for lifetimes under one second.
	ErrInvalidTTL = errors.New("jwt: ttl must be at least one second")
	// ErrNoSigningKey is returned by Issue on a verify-only service.
	ErrNoSigningKey = errors.New("jwt: no signing key configured")
)

// Claims is the payload of an access token.
type Claims struct {
	gojwt.RegisteredClaims
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
	// Version is the subject's token generation at issuance. Zero is
	// omitted from the payload.
	Version int64 `json:"ver,omitempty"`
}

// SubjectID returns the subject (user id).
func (c *Claims) SubjectID() string { return c.Subject }

// AccessRole returns the role name carried by the token.
func (c *Claims) AccessRole() string { return c.Role }

// Active reports the account state at issuance.
func (c *Claims) Active() bool { return c.IsActive }

// IssuedAtTime returns iat, or the zero time when absent.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// Service issues and verifies tokens. It holds no mutable state and is safe
// for concurrent use.
type Service struct {
	cfg       Config
	method    gojwt.SigningMethod
	signKey   interface{}
	verifyKey interface{}
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source; tests use it to move past expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService validates cfg and resolves its keys.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	signKey, verifyKey, err := cfg.keys()
	if err != nil {
		return nil, err
	}
	s := &Service{
		cfg:       cfg,
		method:    cfg.signingMethod(),
		signKey:   signKey,
		verifyKey: verifyKey,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DefaultTTL returns the configured access token lifetime.
func (s *Service) DefaultTTL() time.Duration {
	return s.cfg.AccessTokenTTL
}

// Issue signs claims with exp = now + ttl and iat = now. The subject must
// be set. Registered time claims on the input are overwritten.
func (s *Service) Issue(claims Claims, ttl time.Duration) (string, error) {
	if ttl < time.Second {
		return "", ErrInvalidTTL
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: subject is required", ErrTokenMalformed)
	}
	if s.signKey == nil {
		return "", ErrNoSigningKey
	}

	now := s.now()
	claims.IssuedAt = gojwt.NewNumericDate(now)
	claims.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	claims.NotBefore = nil
	if s.cfg.Issuer != "" {
		claims.Issuer = s.cfg.Issuer
	}
	if s.cfg.Audience != "" {
		claims.Audience = gojwt.ClaimStrings{s.cfg.Audience}
	}

	signed, err := gojwt.NewWithClaims(s.method, claims).SignedString(s.signKey)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

// Verify authenticates token and returns its claims. The error is one of
// ErrTokenMalformed, ErrTokenTampered or ErrTokenExpired (possibly
// wrapped); every one of them means "not authenticated".
func (s *Service) Verify(token string) (*Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, ErrTokenMalformed
	}

	// Integrity first, over the exact bytes received. Strict decoding
	// rejects non-canonical trailing bits, so no two signature strings
	// decode to the same bytes.
	sig, err := base64.RawURLEncoding.Strict().DecodeString(parts[2])
	if err != nil {
		return nil, ErrTokenTampered
	}
	if err := s.method.Verify(parts[0]+"."+parts[1], sig, s.verifyKey); err != nil {
		return nil, ErrTokenTampered
	}

	claims := &Claims{}
	_, err = gojwt.ParseWithClaims(token, claims, s.keyFunc, s.parserOptions()...)
	switch {
	case err == nil:
	case errors.Is(err, gojwt.ErrTokenExpired):
		return nil, ErrTokenExpired
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return nil, ErrTokenTampered
	default:
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenMalformed)
	}
	return claims, nil
}

func (s *Service) keyFunc(token *gojwt.Token) (interface{}, error) {
	if token.Method.Alg() != s.method.Alg() {
		return nil, fmt.Errorf("jwt: unexpected signing method: %s", token.Method.Alg())
	}
	return s.verifyKey, nil
}

func (s *Service) parserOptions() []gojwt.ParserOption {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{s.method.Alg()}),
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	}
	if s.cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, gojwt.WithAudience(s.cfg.Audience))
	}
	return opts
}
