package authz

import "strings"

// Checker answers whether subject holds permission. Subjects here are role
// names and permissions are "resource:action" strings.
type Checker interface {
	HasPermission(subject string, permission string) bool
}

// CheckerFunc is an adapter to use ordinary functions as Checker.
type CheckerFunc func(subject string, permission string) bool

// HasPermission implements Checker.
func (f CheckerFunc) HasPermission(subject string, permission string) bool {
	return f(subject, permission)
}

// MapChecker is an in-memory Checker backed by subject -> permission patterns.
type MapChecker struct {
	permissions map[string][]string
}

// NewMapChecker creates a Checker from a static map of subject to patterns.
func NewMapChecker(permissions map[string][]string) *MapChecker {
	return &MapChecker{permissions: permissions}
}

// HasPermission implements Checker.
func (c *MapChecker) HasPermission(subject string, required string) bool {
	patterns, ok := c.permissions[subject]
	if !ok {
		return false
	}
	return MatchAny(patterns, required)
}

// rolePermission is the permission a role requirement translates to.
func rolePermission(r Role) string {
	return "role:" + string(r)
}

// DefaultPolicy grants admin every role and every other role only itself.
func DefaultPolicy() *MapChecker {
	return NewMapChecker(map[string][]string{
		string(RoleAdmin):    {"*:*"},
		string(RoleDesigner): {rolePermission(RoleDesigner)},
		string(RoleViewer):   {rolePermission(RoleViewer)},
	})
}

// MatchPattern checks a "resource:action" pattern against a required
// permission. "*" in either half matches anything, and "*" or "*:*" alone
// match everything.
func MatchPattern(pattern, required string) bool {
	if pattern == required || pattern == "*" || pattern == "*:*" {
		return true
	}

	patRes, patAct, patOK := strings.Cut(pattern, ":")
	reqRes, reqAct, reqOK := strings.Cut(required, ":")
	if !patOK || !reqOK {
		return false
	}
	return matchWildcard(patRes, reqRes) && matchWildcard(patAct, reqAct)
}

// MatchAny returns true if any of the patterns match the required permission.
func MatchAny(patterns []string, required string) bool {
	for _, p := range patterns {
		if MatchPattern(p, required) {
			return true
		}
	}
	return false
}

func matchWildcard(pattern, value string) bool {
	return pattern == "*" || pattern == value
}
