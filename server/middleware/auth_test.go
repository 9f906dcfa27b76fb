package middleware_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/atelierai/platform/auth"
	"github.com/atelierai/platform/auth/authctx"
	"github.com/atelierai/platform/auth/jwt"
	"github.com/atelierai/platform/authz"
	"github.com/atelierai/platform/server/middleware"
)

func claimsFor(sub, role string, active bool) *jwt.Claims {
	return &jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{Subject: sub},
		Role:             role,
		IsActive:         active,
	}
}

// fakeValidator accepts "<sub>:<role>" tokens and fails the rest with
// the error registered for them.
type fakeValidator map[string]any

func (f fakeValidator) Authenticate(_ context.Context, token string) (*jwt.Claims, error) {
	switch v := f[token].(type) {
	case *jwt.Claims:
		return v, nil
	case error:
		return nil, v
	}
	return nil, jwt.ErrTokenMalformed
}

func authRouter(v auth.TokenValidator, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{middleware.Auth(v)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims, ok := authctx.Claims(c.Request.Context())
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.String(http.StatusOK, claims.SubjectID()+"/"+c.GetString(middleware.ContextKeyUserID))
	})
	r.GET("/me", handlers...)
	return r
}

func bearer(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuth_StoresClaims(t *testing.T) {
	r := authRouter(fakeValidator{"good": claimsFor("u1", "designer", true)})

	rr := serve(r, bearer("good"))
	if rr.Code != http.StatusOK || rr.Body.String() != "u1/u1" {
		t.Fatalf("got %d %q", rr.Code, rr.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
	req.Header.Set("Authorization", "bearer good")
	if rr := serve(r, req); rr.Code != http.StatusOK {
		t.Errorf("scheme should be case-insensitive, got %d", rr.Code)
	}
}

func TestAuth_Rejections(t *testing.T) {
	v := fakeValidator{
		"expired":  jwt.ErrTokenExpired,
		"tampered": jwt.ErrTokenTampered,
		"revoked":  auth.ErrTokenRevoked,
		"wrapped":  fmt.Errorf("%w: missing subject", jwt.ErrTokenMalformed),
	}
	r := authRouter(v)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"no header", "", "UNAUTHORIZED"},
		{"basic scheme", "Basic dXNlcjpwYXNz", "UNAUTHORIZED"},
		{"empty bearer", "Bearer ", "UNAUTHORIZED"},
		{"expired", "Bearer expired", "TOKEN_EXPIRED"},
		{"tampered", "Bearer tampered", "INVALID_TOKEN"},
		{"malformed", "Bearer garbage", "INVALID_TOKEN"},
		{"wrapped malformed", "Bearer wrapped", "INVALID_TOKEN"},
		{"revoked", "Bearer revoked", "TOKEN_REVOKED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", http.NoBody)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := serve(r, req)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
			if got := rr.Header().Get("WWW-Authenticate"); got != "Bearer" {
				t.Errorf("WWW-Authenticate = %q", got)
			}
			if env := decodeError(t, rr); env.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", env.Error.Code, tt.code)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	v := fakeValidator{
		"admin":    claimsFor("a", "admin", true),
		"designer": claimsFor("d", "designer", true),
		"viewer":   claimsFor("v", "viewer", true),
		"inactive": claimsFor("i", "admin", false),
	}
	r := authRouter(v, middleware.RequireRole(authz.NewGuard(nil), authz.RoleDesigner))

	tests := []struct {
		token  string
		status int
		code   string
	}{
		{"admin", http.StatusOK, ""},
		{"designer", http.StatusOK, ""},
		{"viewer", http.StatusForbidden, "INSUFFICIENT_ROLE"},
		{"inactive", http.StatusForbidden, "INACTIVE_ACCOUNT"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			rr := serve(r, bearer(tt.token))
			if rr.Code != tt.status {
				t.Fatalf("status = %d, want %d", rr.Code, tt.status)
			}
			if tt.code == "" {
				return
			}
			env := decodeError(t, rr)
			if env.Error.Code != tt.code {
				t.Errorf("code = %s, want %s", env.Error.Code, tt.code)
			}
			if tt.code == "INSUFFICIENT_ROLE" && env.Error.Details["required_role"] != "designer" {
				t.Errorf("details = %v", env.Error.Details)
			}
		})
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	r := gin.New()
	r.GET("/admin", middleware.RequireRole(authz.NewGuard(nil), authz.RoleAdmin), ok)

	rr := serve(r, httptest.NewRequest(http.MethodGet, "/admin", http.NoBody))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", rr.Code)
	}
}

func TestRequireActive(t *testing.T) {
	v := fakeValidator{
		"viewer":   claimsFor("v", "viewer", true),
		"inactive": claimsFor("i", "viewer", false),
	}
	r := authRouter(v, middleware.RequireActive(authz.NewGuard(nil)))

	if rr := serve(r, bearer("viewer")); rr.Code != http.StatusOK {
		t.Errorf("active viewer: %d", rr.Code)
	}
	if rr := serve(r, bearer("inactive")); rr.Code != http.StatusForbidden {
		t.Errorf("inactive: %d", rr.Code)
	}
}
