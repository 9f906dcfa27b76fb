// Package api exposes the account and administration endpoints over gin.
//
// Handlers decode and validate the request, call the auth service or the
// user store, and write either the resource or the standard error
// envelope via server.RespondWithError. Authentication and role checks run
// as route middleware (middleware.Auth, middleware.RequireRole), so a
// handler behind them can rely on claims being present in the request
// context.
//
//	api.Mount(srv.GinEngine(), api.Deps{Auth: authSvc, Users: repo, Cache: store, Guard: guard, Log: log}, cfg.RateLimit)
package api
