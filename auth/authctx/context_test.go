package authctx

import (
	"context"
	"errors"
	"testing"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/atelierai/platform/auth/jwt"
	"github.com/atelierai/platform/logger"
)

func TestClaimsRoundTrip(t *testing.T) {
	ctx := context.Background()
	if _, ok := Claims(ctx); ok {
		t.Fatal("empty context should carry no claims")
	}
	if _, err := ClaimsOrError(ctx); !errors.Is(err, ErrNoClaims) {
		t.Errorf("expected ErrNoClaims, got %v", err)
	}

	claims := &jwt.Claims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "user-1"}, Role: "admin"}
	ctx = WithClaims(ctx, claims)

	got, ok := Claims(ctx)
	if !ok || got != claims {
		t.Fatalf("Claims() = %v, %v", got, ok)
	}
	if id := logger.UserIDFromContext(ctx); id != "user-1" {
		t.Errorf("user id not propagated to logging context: %q", id)
	}
}
