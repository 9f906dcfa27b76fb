package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelierai/platform/database/query"
	apperrors "github.com/atelierai/platform/errors"
	"github.com/atelierai/platform/server/middleware"
)

var (
	errNoRoute  = apperrors.NotFound("route", "")
	errNoMethod = apperrors.New(apperrors.ErrCodeInvalidInput, "Method not allowed.", http.StatusMethodNotAllowed)
)

// DataResponse is the standard success envelope for collections.
type DataResponse struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries pagination metadata.
type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// MetaFromPagination converts a query result's pagination.
func MetaFromPagination(p query.Pagination) *Meta {
	return &Meta{Page: p.Page, PageSize: p.PageSize, Total: p.Total, TotalPages: p.TotalPages}
}

// RespondWithError writes the error envelope for err. Package sentinels are
// mapped to their client-facing codes; unknown errors become a generic 500
// and are logged with their cause.
func RespondWithError(c *gin.Context, err error) {
	appErr := middleware.AppError(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	middleware.Abort(c, appErr)
}

// RespondOK sends a 200 with data as the body.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondList sends a 200 with the collection envelope.
func RespondList(c *gin.Context, data any, meta *Meta) {
	c.JSON(http.StatusOK, DataResponse{Data: data, Meta: meta})
}

// RespondCreated sends a 201 with data as the body.
func RespondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// RespondNoContent sends a 204 with no body.
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
