// Package authctx carries verified token claims through a request context.
//
//	ctx = authctx.WithClaims(ctx, claims) // auth middleware
//	claims, ok := authctx.Claims(ctx)     // handlers
package authctx

import (
	"context"
	"errors"

	"github.com/atelierai/platform/auth/jwt"
	"github.com/atelierai/platform/logger"
)

type contextKey struct{}

// ErrNoClaims is returned when the context carries no claims.
var ErrNoClaims = errors.New("authctx: no claims in context")

// WithClaims stores claims in ctx and tags the context's log lines with
// the subject id.
func WithClaims(ctx context.Context, claims *jwt.Claims) context.Context {
	ctx = context.WithValue(ctx, contextKey{}, claims)
	return logger.ContextWithUserID(ctx, claims.SubjectID())
}

// Claims returns the claims stored by WithClaims.
func Claims(ctx context.Context) (*jwt.Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*jwt.Claims)
	return claims, ok && claims != nil
}

// ClaimsOrError is Claims with ErrNoClaims for the missing case.
func ClaimsOrError(ctx context.Context) (*jwt.Claims, error) {
	claims, ok := Claims(ctx)
	if !ok {
		return nil, ErrNoClaims
	}
	return claims, nil
}
