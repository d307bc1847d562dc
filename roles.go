package identity

// Role is a coarse permission label attached to a user.
type Role string

const (
	// RoleUser can read and manage its own record
	RoleUser Role = "USER"
	// RoleAdmin can manage users and organizations
	RoleAdmin Role = "ADMIN"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Authority maps the role to its authority string, e.g. ROLE_ADMIN.
// The mapping is a pure function so the persisted record never has to know
// about authorization vocabulary.
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

// IsAtLeast checks if this role meets the minimum required level
func (r Role) IsAtLeast(minRole Role) bool {
	roleHierarchy := map[Role]int{
		RoleUser:  0,
		RoleAdmin: 1,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []Role {
	return []Role{
		RoleUser,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}
