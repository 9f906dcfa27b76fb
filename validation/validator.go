package validation

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/atelierai/platform/errors"
)

// Validator collects field errors for input that struct tags cannot
// describe, such as path parameters.
type Validator struct {
	fields map[string]string
	order  []string
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{fields: make(map[string]string)}
}

// AddError records message for field. The first error per field wins.
func (v *Validator) AddError(field, message string) {
	if _, exists := v.fields[field]; exists {
		return
	}
	v.fields[field] = message
	v.order = append(v.order, field)
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.fields) > 0
}

// Validate returns an INVALID_INPUT AppError listing every failed field,
// or nil.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}
	messages := make([]string, len(v.order))
	for i, f := range v.order {
		messages[i] = f + " " + v.fields[f]
	}
	return errors.Validation(strings.Join(messages, "; "), v.fields)
}

// Required checks that value is not blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// UUID checks that value is a non-nil UUID.
func (v *Validator) UUID(field, value string) *Validator {
	id, err := uuid.Parse(value)
	switch {
	case strings.TrimSpace(value) == "":
		v.AddError(field, "is required")
	case err != nil:
		v.AddError(field, "must be a valid UUID")
	case id == uuid.Nil:
		v.AddError(field, "must not be empty")
	}
	return v
}

// Email checks that value is a bare address.
func (v *Validator) Email(field, value string) *Validator {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.AddError(field, "must be a valid email address")
	}
	return v
}

// MaxLength checks the byte length of value.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddError(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return v
}

// MinLength checks the byte length of value.
func (v *Validator) MinLength(field, value string, minLen int) *Validator {
	if len(value) < minLen {
		v.AddError(field, fmt.Sprintf("must be at least %d characters", minLen))
	}
	return v
}

// OneOf checks that value is one of allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if !slices.Contains(allowed, value) {
		v.AddError(field, "must be one of: "+strings.Join(allowed, ", "))
	}
	return v
}

// Custom records message for field when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// ValidateUUID validates and parses a UUID string.
func ValidateUUID(field, value string) (uuid.UUID, error) {
	if appErr := New().UUID(field, value).Validate(); appErr != nil {
		return uuid.Nil, appErr
	}
	return uuid.MustParse(value), nil
}
