package auth

import "github.com/atelierai/platform/users"

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// Session is the result of a successful register, login or refresh.
type Session struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int64          `json:"expires_in"`
	User        *users.Profile `json:"user"`
}

// RegisterInput is a new account request.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}
