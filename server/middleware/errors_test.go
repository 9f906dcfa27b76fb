package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/atelierai/platform/auth"
	"github.com/atelierai/platform/auth/authctx"
	"github.com/atelierai/platform/auth/jwt"
	"github.com/atelierai/platform/auth/password"
	"github.com/atelierai/platform/authz"
	"github.com/atelierai/platform/cache"
	apperrors "github.com/atelierai/platform/errors"
	"github.com/atelierai/platform/users"
)

func TestAppError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   apperrors.ErrorCode
		status int
	}{
		{"invalid credentials", auth.ErrInvalidCredentials, apperrors.ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{"expired", jwt.ErrTokenExpired, apperrors.ErrCodeTokenExpired, http.StatusUnauthorized},
		{"malformed", jwt.ErrTokenMalformed, apperrors.ErrCodeInvalidToken, http.StatusUnauthorized},
		{"tampered", jwt.ErrTokenTampered, apperrors.ErrCodeInvalidToken, http.StatusUnauthorized},
		{"revoked", auth.ErrTokenRevoked, apperrors.ErrCodeTokenRevoked, http.StatusUnauthorized},
		{"unauthenticated", authz.ErrUnauthenticated, apperrors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{"no claims", authctx.ErrNoClaims, apperrors.ErrCodeUnauthorized, http.StatusUnauthorized},
		{"inactive", authz.ErrInactiveAccount, apperrors.ErrCodeInactiveAccount, http.StatusForbidden},
		{"role", &authz.RoleError{Required: authz.RoleAdmin}, apperrors.ErrCodeInsufficientRole, http.StatusForbidden},
		{"email taken", auth.ErrEmailTaken, apperrors.ErrCodeAlreadyExists, http.StatusBadRequest},
		{"user not found", fmt.Errorf("load: %w", users.ErrNotFound), apperrors.ErrCodeNotFound, http.StatusNotFound},
		{"password too short", password.ErrTooShort, apperrors.ErrCodeInvalidInput, http.StatusBadRequest},
		{"password too long", password.ErrTooLong, apperrors.ErrCodeInvalidInput, http.StatusBadRequest},
		{"cache down", &cache.Error{Kind: cache.ErrUnavailable, Op: "clear_pattern", Err: errors.New("refused")}, apperrors.ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{"app error", apperrors.RateLimited(), apperrors.ErrCodeRateLimited, http.StatusTooManyRequests},
		{"unknown", errors.New("disk on fire"), apperrors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AppError(tt.err)
			if got.Code != tt.code || got.HTTPStatus != tt.status {
				t.Errorf("AppError(%v) = %s/%d, want %s/%d", tt.err, got.Code, got.HTTPStatus, tt.code, tt.status)
			}
		})
	}
}

func TestAppError_InternalHidesCause(t *testing.T) {
	got := AppError(errors.New("pq: password authentication failed"))
	if got.ToResponse().Error.Message == "pq: password authentication failed" {
		t.Error("internal cause must not be the client message")
	}
	if got.Cause == nil {
		t.Error("cause should be kept for logging")
	}
}

func TestAppError_RoleNamesOnlyRequired(t *testing.T) {
	got := AppError(&authz.RoleError{Required: authz.RoleAdmin})
	if got.Details["required_role"] != "admin" {
		t.Errorf("details = %v", got.Details)
	}
	if len(got.Details) != 1 {
		t.Errorf("only the required role may be disclosed, got %v", got.Details)
	}
}
