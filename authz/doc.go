// Package authz decides whether an authenticated principal may perform an
// action.
//
// Roles form a flat hierarchy with one superuser: admin satisfies every
// requirement, every other role satisfies only itself. The decision is a
// pure function of the principal's claims; nothing is stored between
// requests.
//
//	guard := authz.NewGuard(nil)
//	userID, err := guard.RequireRole(claims, authz.RoleAdmin)
//
// This package uses the standard library only.
package authz
