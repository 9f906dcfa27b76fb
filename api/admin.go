package api

import (
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/atelierai/platform/auth"
	"github.com/atelierai/platform/authz"
	"github.com/atelierai/platform/cache"
	"github.com/atelierai/platform/database/query"
	apperrors "github.com/atelierai/platform/errors"
	"github.com/atelierai/platform/logger"
	"github.com/atelierai/platform/server"
	"github.com/atelierai/platform/users"
)

// AdminHandler serves the /admin endpoints. Every route is mounted behind
// Auth and RequireRole(admin).
type AdminHandler struct {
	svc   *auth.Service
	users *users.Repository
	cache *cache.Store
	log   *logger.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(svc *auth.Service, repo *users.Repository, store *cache.Store, log *logger.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, users: repo, cache: store, log: log.WithComponent("admin")}
}

// ListUsers returns one page of user profiles. Accepts page, pageSize,
// search, sortBy, order and the role, is_active and subscription_tier
// filters.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := query.Parse(c.Request.URL.Query(), users.ListQuery)
	res, err := h.users.List(c.Request.Context(), params)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}

	profiles := make([]*users.Profile, len(res.Data))
	for i := range res.Data {
		profiles[i] = res.Data[i].Profile()
	}
	server.RespondList(c, profiles, server.MetaFromPagination(res.Pagination))
}

// Deactivate disables an account. Its outstanding tokens stop working.
func (h *AdminHandler) Deactivate(c *gin.Context) {
	var uri userURI
	if !bindURI(c, &uri) {
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), uri.ID); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, StatusResponse{UserID: uri.ID, Status: "deactivated"})
}

// ChangeRole sets an account's role.
func (h *AdminHandler) ChangeRole(c *gin.Context) {
	var uri userURI
	if !bindURI(c, &uri) {
		return
	}
	var req ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.svc.ChangeRole(c.Request.Context(), uri.ID, authz.Role(req.Role)); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, StatusResponse{UserID: uri.ID, Status: "role_changed"})
}

// ClearCache deletes every cached entry of one entity type.
func (h *AdminHandler) ClearCache(c *gin.Context) {
	entity := c.Param("entity")
	if !slices.Contains(cache.Entities, entity) {
		server.RespondWithError(c, apperrors.NotFound("cache entity", entity))
		return
	}

	deleted, err := h.cache.ClearPattern(c.Request.Context(), cache.Pattern(entity))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.log.WithContext(c.Request.Context()).Info("Cache entity cleared", logger.Fields("entity", entity, "deleted", deleted))
	server.RespondOK(c, CacheClearResponse{Entity: entity, Deleted: deleted})
}
