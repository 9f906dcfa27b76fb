// Package validation checks API input and reports failures as
// INVALID_INPUT AppErrors with a per-field message map.
//
// # Struct Tag Validation
//
//	type RegisterRequest struct {
//	    Email    string `json:"email" validate:"required,email,max=255"`
//	    Password string `json:"password" validate:"required,min=8,max=72"`
//	}
//	if err := validation.Validate(req); err != nil { ... }
//
// The custom tag "role" accepts the names in authz.Roles.
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.UUID("id", c.Param("id"))
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
