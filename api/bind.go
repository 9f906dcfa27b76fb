package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/atelierai/platform/errors"
	"github.com/atelierai/platform/server"
	"github.com/atelierai/platform/validation"
)

var errBodyTooLarge = apperrors.New(apperrors.ErrCodeInvalidInput, "Request body too large.", http.StatusRequestEntityTooLarge)

// bindJSON decodes the body into dst and runs its validate tags. On failure
// the error envelope has been written and false is returned.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			server.RespondWithError(c, errBodyTooLarge)
			return false
		}
		server.RespondWithError(c, apperrors.InvalidInput("body", "request body must be a JSON object"))
		return false
	}
	if err := validation.Validate(dst); err != nil {
		server.RespondWithError(c, err)
		return false
	}
	return true
}

// bindURI binds and validates path parameters.
func bindURI(c *gin.Context, dst any) bool {
	if err := c.ShouldBindUri(dst); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("path", err.Error()))
		return false
	}
	if err := validation.Validate(dst); err != nil {
		server.RespondWithError(c, err)
		return false
	}
	return true
}
