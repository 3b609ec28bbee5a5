package enums

import "strings"

// RoleAdmin is the only role allowed to complete or cancel orders.
const RoleAdmin = "Admin"

// IsAdmin reports whether the supplied role string grants admin rights.
// Comparison is exact; "admin" is not an admin.
func IsAdmin(role string) bool {
	return strings.TrimSpace(role) == RoleAdmin
}
