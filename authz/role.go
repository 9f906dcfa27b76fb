package authz

import "fmt"

// Role is an access role carried in a token.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleDesigner Role = "designer"
	RoleAdmin    Role = "admin"
)

// DefaultRole is assigned at registration when none is requested.
const DefaultRole = RoleDesigner

// Roles lists every known role.
var Roles = []Role{RoleViewer, RoleDesigner, RoleAdmin}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleViewer, RoleDesigner, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts s to a Role, rejecting unknown names.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("authz: unknown role %q", s)
	}
	return r, nil
}
