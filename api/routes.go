package api

import (
	"github.com/gin-gonic/gin"

	"github.com/atelierai/platform/auth"
	"github.com/atelierai/platform/authz"
	"github.com/atelierai/platform/cache"
	"github.com/atelierai/platform/logger"
	"github.com/atelierai/platform/server/middleware"
	"github.com/atelierai/platform/users"
)

// BasePath prefixes every route in this package.
const BasePath = "/api/v1"

// RateLimitConfig throttles the unauthenticated account endpoints.
type RateLimitConfig struct {
	// LoginPerMinute caps login and register attempts per client IP.
	LoginPerMinute int `mapstructure:"login_per_minute"`
	// RefreshPerMinute caps token refreshes per authenticated user.
	RefreshPerMinute int `mapstructure:"refresh_per_minute"`
}

// ApplyDefaults sets LoginPerMinute to 10 and RefreshPerMinute to 30 when
// unset.
func (c *RateLimitConfig) ApplyDefaults() {
	if c.LoginPerMinute <= 0 {
		c.LoginPerMinute = 10
	}
	if c.RefreshPerMinute <= 0 {
		c.RefreshPerMinute = 30
	}
}

// Deps are the services the handlers call.
type Deps struct {
	Auth  *auth.Service
	Users *users.Repository
	Cache *cache.Store
	Guard *authz.Guard
	Log   *logger.Logger
}

// Mount registers the account and admin routes on r.
func Mount(r gin.IRouter, deps Deps, rl RateLimitConfig) {
	rl.ApplyDefaults()
	if deps.Guard == nil {
		deps.Guard = authz.NewGuard(nil)
	}
	authn := middleware.Auth(deps.Auth)
	throttle := func(route string) gin.HandlerFunc {
		return middleware.RateLimit(deps.Cache, middleware.RateLimitConfig{
			Route:             route,
			RequestsPerMinute: rl.LoginPerMinute,
		}, deps.Log)
	}

	v1 := r.Group(BasePath)

	ah := NewAuthHandler(deps.Auth)
	account := v1.Group("/auth")
	account.POST("/register", throttle("register"), ah.Register)
	account.POST("/login", throttle("login"), ah.Login)
	account.GET("/me", authn, ah.Me)
	account.POST("/refresh", authn, middleware.RateLimit(deps.Cache, middleware.RateLimitConfig{
		Route:             "refresh",
		RequestsPerMinute: rl.RefreshPerMinute,
		KeyFunc:           middleware.UserBasedKey,
	}, deps.Log), ah.Refresh)

	adm := NewAdminHandler(deps.Auth, deps.Users, deps.Cache, deps.Log)
	admin := v1.Group("/admin", authn, middleware.RequireRole(deps.Guard, authz.RoleAdmin))
	admin.GET("/users", adm.ListUsers)
	admin.POST("/users/:id/deactivate", adm.Deactivate)
	admin.PUT("/users/:id/role", adm.ChangeRole)
	admin.DELETE("/cache/:entity", adm.ClearCache)
}
