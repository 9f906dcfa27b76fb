// Package auth implements account authentication for the platform API.
//
// Subpackages hold the primitives:
//
//   - auth/password  password hashing (bcrypt, argon2id)
//   - auth/jwt       signed access tokens
//   - auth/authctx   claims propagation through a request context
//
// Service composes them with the user store, the role guard from
// github.com/atelierai/platform/authz and an optional revocation list kept
// in the cache:
//
//	auth:
//	  jwt:
//	    secret: "at-least-32-bytes-of-secret-material"
//	    access_token_ttl: "30m"
//	  password:
//	    algorithm: "bcrypt"
//	    bcrypt_cost: 12
//	  revocation: true
//
// Every authentication failure resolves to "not authenticated"; the
// sentinel errors keep the reason for logs and metrics only.
package auth
