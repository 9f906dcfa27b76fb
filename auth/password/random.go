package password

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// RandomPassword returns a URL-safe string built from n random bytes. It is
// meant for throwaway credentials, never for user input.
func RandomPassword(n int) (string, error) {
	b, err := randomBytes(n)
	if err != nil {
		return "", fmt.Errorf("password: random password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
