package constants

import "strings"

// Role gates which companies a user's requests may read.
type Role string

const (
	// RoleAnalyst sees the companies in their assignment set.
	RoleAnalyst Role = "analyst"
	// RoleCEO sees their own company (a single-element assignment set).
	RoleCEO Role = "ceo"
	// RoleChairman sees every company; the assignment set is ignored.
	RoleChairman Role = "chairman"
)

var allRoles = []Role{RoleAnalyst, RoleCEO, RoleChairman}

func AllRoles() []Role {
	result := make([]Role, len(allRoles))
	copy(result, allRoles)
	return result
}

// ParseRole matches an input string against the known roles.
func ParseRole(input string) (Role, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, r := range allRoles {
		if normalized == string(r) {
			return r, true
		}
	}
	return "", false
}

// ViewsAll reports whether the role ignores company assignments entirely.
func (r Role) ViewsAll() bool {
	return r == RoleChairman
}
