package models

import "fmt"

// Role is the closed set of account roles
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// AdminRoles is the role set allowed to perform write operations
var AdminRoles = []Role{RoleAdmin, RoleSuperAdmin}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// ParseRole converts a raw value into a Role
func ParseRole(value string) (Role, error) {
	r := Role(value)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role: %s", value)
	}
	return r, nil
}

// RoleSet is an explicit capability set used by the role gate
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from the given roles, ignoring unknown values
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.Valid() {
			set[r] = struct{}{}
		}
	}
	return set
}

// Allows reports whether the role belongs to the set
func (s RoleSet) Allows(r Role) bool {
	_, ok := s[r]
	return ok
}

// Identity is the principal resolved from an access token
type Identity struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
