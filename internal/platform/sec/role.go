// Copyright (c) 2026 Meserio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # Caller Roles

// UserRole represents the authorization level granted to a caller.
type UserRole string

const (
	// Unrestricted system access: owns the taxonomy and question schemas
	RoleAdmin UserRole = "admin"

	// Can review firm submissions but not change schemas
	RoleModerator UserRole = "moderator"

	// A firm account: answers questionnaires for its own firm only
	RoleFirm UserRole = "firm"
)

// # Role Hierarchy

// AtLeast checks if the current role meets or exceeds the required target role.
func (r UserRole) AtLeast(target UserRole) bool {
	return r.level() >= target.level()
}

// level maps a role to a numeric hierarchy level for comparison logic.
func (r UserRole) level() int {

	// Linear scale (10-40) allows for future intermediate roles
	switch r {
	case RoleAdmin:
		return 40
	case RoleModerator:
		return 30
	case RoleFirm:
		return 10
	default:
		return 0
	}
}
