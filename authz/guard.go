package authz

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means there is no usable principal at all.
	ErrUnauthenticated = errors.New("authz: not authenticated")
	// ErrInsufficientRole means the principal's role does not satisfy the requirement.
	ErrInsufficientRole = errors.New("authz: insufficient role")
	// ErrInactiveAccount means the principal's account is deactivated.
	ErrInactiveAccount = errors.New("authz: inactive account")
)

// Principal is an authenticated caller. *jwt.Claims implements it.
type Principal interface {
	SubjectID() string
	AccessRole() string
	Active() bool
}

// Guard enforces role requirements against a Checker policy.
type Guard struct {
	checker Checker
}

// NewGuard creates a guard. A nil checker selects DefaultPolicy.
func NewGuard(checker Checker) *Guard {
	if checker == nil {
		checker = DefaultPolicy()
	}
	return &Guard{checker: checker}
}

// RequireRole returns the principal's subject id when its account is active
// and its role satisfies required. Inactive accounts are rejected before
// the role is considered.
func (g *Guard) RequireRole(p Principal, required Role) (string, error) {
	if p == nil || p.SubjectID() == "" {
		return "", ErrUnauthenticated
	}
	if !p.Active() {
		return "", ErrInactiveAccount
	}
	if !g.checker.HasPermission(p.AccessRole(), rolePermission(required)) {
		return "", &RoleError{Required: required}
	}
	return p.SubjectID(), nil
}

// RequireActive only checks the account state.
func (g *Guard) RequireActive(p Principal) (string, error) {
	if p == nil || p.SubjectID() == "" {
		return "", ErrUnauthenticated
	}
	if !p.Active() {
		return "", ErrInactiveAccount
	}
	return p.SubjectID(), nil
}

// RoleError reports an unmet role requirement. It matches
// ErrInsufficientRole with errors.Is and names only the required role.
type RoleError struct {
	Required Role
}

func (e *RoleError) Error() string {
	return fmt.Sprintf("authz: insufficient role, requires %s", e.Required)
}

func (e *RoleError) Is(target error) bool {
	return target == ErrInsufficientRole
}
