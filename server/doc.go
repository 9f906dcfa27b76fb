// Package server is the HTTP boundary: a Gin engine with HTTP/2 (h2c or
// TLS) support, the standard middleware stack and the operational
// endpoints.
//
// # Middleware
//
// Handler level (server/middleware), ahead of routing:
//
//   - CORS: allowed origins, preflight answered with 204
//   - BodySizeLimit: 413 for oversized bodies
//
// Gin level:
//
//   - Recovery: panics become a 500 envelope
//   - RequestID: X-Request-Id generation and propagation
//   - Tracing: one server span per request
//   - RequestLogger: access log and request metrics
//
// Route level, installed by the API:
//
//   - Auth: Bearer token to claims in the request context
//   - RequireRole / RequireActive: 403 for inactive accounts or unmet roles
//   - RateLimit: fixed-window counter in the cache, fail-open
//
// # Errors
//
// RespondWithError maps package errors (jwt.ErrTokenExpired,
// auth.ErrInvalidCredentials, authz.RoleError, ...) to the envelope
//
//	{"error": {"code": "TOKEN_EXPIRED", "message": "...", "retryable": false}}
//
// # Endpoints
//
//   - /health: component health aggregation (503 when any is unhealthy)
//   - /ready: readiness probe
//   - /alive: liveness probe
//   - /info: build information
package server
