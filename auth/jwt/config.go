package jwt

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// SigningMethod names a supported JWT signing algorithm.
type SigningMethod string

const (
	HS256 SigningMethod = "HS256"
	HS384 SigningMethod = "HS384"
	HS512 SigningMethod = "HS512"
	RS256 SigningMethod = "RS256"
	ES256 SigningMethod = "ES256"
)

// minSecretBytes is the shortest HMAC secret accepted.
const minSecretBytes = 32

// Config configures the token service. The algorithm and key are fixed for
// the life of the process; changing either invalidates every outstanding
// token.
type Config struct {
	// Secret is the HMAC signing key (required for HS* methods).
	Secret string `mapstructure:"secret"`

	// PrivateKey and PublicKey are PEM blocks for RS256/ES256.
	// PublicKey is derived from PrivateKey when empty.
	PrivateKey string `mapstructure:"private_key"`
	PublicKey  string `mapstructure:"public_key"`

	// Method is the signing algorithm (default: HS256).
	Method SigningMethod `mapstructure:"method"`

	// Issuer and Audience are written into and required on every token when set.
	Issuer   string `mapstructure:"issuer"`
	Audience string `mapstructure:"audience"`

	// AccessTokenTTL is the lifetime of access tokens (default: 30m).
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Method == "" {
		c.Method = HS256
	}
	if c.AccessTokenTTL == 0 {
		c.AccessTokenTTL = 30 * time.Minute
	}
}

// Validate checks required fields for the configured method.
func (c *Config) Validate() error {
	switch c.Method {
	case HS256, HS384, HS512:
		if len(c.Secret) < minSecretBytes {
			return fmt.Errorf("jwt: secret must be at least %d bytes for HMAC signing methods", minSecretBytes)
		}
	case RS256, ES256:
		if c.PrivateKey == "" && c.PublicKey == "" {
			return fmt.Errorf("jwt: private_key or public_key is required for %s", c.Method)
		}
	default:
		return errors.New("jwt: unsupported signing method: " + string(c.Method))
	}
	if c.AccessTokenTTL < time.Second {
		return fmt.Errorf("jwt: access_token_ttl must be at least 1s (got: %s)", c.AccessTokenTTL)
	}
	return nil
}

func (c *Config) signingMethod() gojwt.SigningMethod {
	switch c.Method {
	case HS384:
		return gojwt.SigningMethodHS384
	case HS512:
		return gojwt.SigningMethodHS512
	case RS256:
		return gojwt.SigningMethodRS256
	case ES256:
		return gojwt.SigningMethodES256
	default:
		return gojwt.SigningMethodHS256
	}
}

// keys resolves the signing and verification keys. signKey is nil for a
// verify-only service configured with just a public key.
func (c *Config) keys() (signKey, verifyKey interface{}, err error) {
	switch c.Method {
	case RS256:
		var priv *rsa.PrivateKey
		if c.PrivateKey != "" {
			if priv, err = gojwt.ParseRSAPrivateKeyFromPEM([]byte(c.PrivateKey)); err != nil {
				return nil, nil, fmt.Errorf("jwt: parse rsa private key: %w", err)
			}
		}
		if c.PublicKey != "" {
			pub, err := gojwt.ParseRSAPublicKeyFromPEM([]byte(c.PublicKey))
			if err != nil {
				return nil, nil, fmt.Errorf("jwt: parse rsa public key: %w", err)
			}
			return keyOrNil(priv), pub, nil
		}
		return priv, &priv.PublicKey, nil
	case ES256:
		var priv *ecdsa.PrivateKey
		if c.PrivateKey != "" {
			if priv, err = gojwt.ParseECPrivateKeyFromPEM([]byte(c.PrivateKey)); err != nil {
				return nil, nil, fmt.Errorf("jwt: parse ecdsa private key: %w", err)
			}
		}
		if c.PublicKey != "" {
			pub, err := gojwt.ParseECPublicKeyFromPEM([]byte(c.PublicKey))
			if err != nil {
				return nil, nil, fmt.Errorf("jwt: parse ecdsa public key: %w", err)
			}
			return keyOrNil(priv), pub, nil
		}
		return priv, &priv.PublicKey, nil
	default:
		return []byte(c.Secret), []byte(c.Secret), nil
	}
}

// keyOrNil keeps a typed nil pointer from becoming a non-nil interface.
func keyOrNil[K any](k *K) interface{} {
	if k == nil {
		return nil
	}
	return k
}
