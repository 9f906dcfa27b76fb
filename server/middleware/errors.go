package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierai/platform/auth"
	"github.com/atelierai/platform/auth/authctx"
	"github.com/atelierai/platform/auth/jwt"
	"github.com/atelierai/platform/auth/password"
	"github.com/atelierai/platform/authz"
	"github.com/atelierai/platform/cache"
	apperrors "github.com/atelierai/platform/errors"
	"github.com/atelierai/platform/users"
)

// AppError maps package sentinels to the client-facing error. Errors that
// already carry an AppError pass through; anything unrecognised becomes a
// 500 that keeps err only as its cause.
func AppError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}

	var roleErr *authz.RoleError
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apperrors.InvalidCredentials()
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.TokenExpired()
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenTampered):
		return apperrors.InvalidToken()
	case errors.Is(err, auth.ErrTokenRevoked):
		return apperrors.TokenRevoked()
	case errors.Is(err, authz.ErrUnauthenticated), errors.Is(err, authctx.ErrNoClaims):
		return apperrors.Unauthorized("")
	case errors.Is(err, authz.ErrInactiveAccount):
		return apperrors.InactiveAccount()
	case errors.As(err, &roleErr):
		return apperrors.InsufficientRole(roleErr.Required.String())
	case errors.Is(err, auth.ErrEmailTaken):
		return apperrors.AlreadyExists("Email already registered.")
	case errors.Is(err, users.ErrNotFound):
		return apperrors.NotFound("user", "")
	case errors.Is(err, password.ErrTooShort):
		return apperrors.InvalidInput("password", "password is too short")
	case errors.Is(err, password.ErrTooLong):
		return apperrors.InvalidInput("password", "password is too long")
	case errors.Is(err, cache.ErrUnavailable):
		return apperrors.ServiceUnavailable("cache").WithCause(err)
	}
	return apperrors.Internal(err)
}

// Abort writes the mapped error envelope and stops the handler chain.
// Every 401 carries a Bearer challenge.
func Abort(c *gin.Context, err error) {
	appErr := AppError(err)
	if appErr.HTTPStatus == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

// writeError is Abort for the plain http.Handler middleware.
func writeError(w http.ResponseWriter, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(appErr.ToResponse())
}
