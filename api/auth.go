package api

import (
	"github.com/gin-gonic/gin"

	"github.com/atelierai/platform/auth"
	"github.com/atelierai/platform/auth/authctx"
	"github.com/atelierai/platform/server"
)

// AuthHandler serves the account endpoints under /auth.
type AuthHandler struct {
	svc *auth.Service
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register creates an account and signs the caller in. Responds 201.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.svc.Register(c.Request.Context(), auth.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, sess)
}

// Login exchanges credentials for a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	sess, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, sess)
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()
	claims, err := authctx.ClaimsOrError(ctx)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	profile, err := h.svc.Me(ctx, claims)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, profile)
}

// Refresh issues a new token for the caller.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := c.Request.Context()
	claims, err := authctx.ClaimsOrError(ctx)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	sess, err := h.svc.Refresh(ctx, claims)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, sess)
}
