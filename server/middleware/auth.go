package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/atelierai/platform/auth"
	"github.com/atelierai/platform/auth/authctx"
	"github.com/atelierai/platform/authz"
	apperrors "github.com/atelierai/platform/errors"
)

// ContextKeyUserID is the gin context key holding the authenticated subject.
const ContextKeyUserID = "user_id"

// Auth validates the Bearer token on every request and stores the claims
// in the request context (see authctx). Missing or unusable tokens are
// rejected with 401 and a Bearer challenge.
func Auth(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Abort(c, apperrors.Unauthorized("Not authenticated."))
			return
		}

		claims, err := validator.Authenticate(c.Request.Context(), token)
		if err != nil {
			Abort(c, err)
			return
		}

		c.Request = c.Request.WithContext(authctx.WithClaims(c.Request.Context(), claims))
		c.Set(ContextKeyUserID, claims.SubjectID())
		c.Next()
	}
}

// RequireRole must run after Auth. Inactive accounts get 403 before the
// role is considered; an unmet role gets 403 naming the required role.
func RequireRole(guard *authz.Guard, role authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authctx.ClaimsOrError(c.Request.Context())
		if err != nil {
			Abort(c, err)
			return
		}
		if _, err := guard.RequireRole(claims, role); err != nil {
			Abort(c, err)
			return
		}
		c.Next()
	}
}

// RequireActive is RequireRole without a role requirement.
func RequireActive(guard *authz.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authctx.ClaimsOrError(c.Request.Context())
		if err != nil {
			Abort(c, err)
			return
		}
		if _, err := guard.RequireActive(claims); err != nil {
			Abort(c, err)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
