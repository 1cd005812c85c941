// Copyright (c) 2026 CineSync. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Roles

// UserRole represents the authorization level carried by an operator token.
type UserRole string

const (
	// Can change provider taxonomy and everything below
	RoleAdmin UserRole = "admin"

	// Can trigger sync runs and read run summaries
	RoleOperator UserRole = "operator"

	// Read-only access
	RoleViewer UserRole = "viewer"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {
	switch r {
	case RoleAdmin:
		return 30
	case RoleOperator:
		return 20
	case RoleViewer:
		return 10
	default:
		return 0
	}
}
