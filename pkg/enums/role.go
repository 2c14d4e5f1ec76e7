package enums

import "fmt"

// Role is the capability level granted by the shared access secret.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleAdmin
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	switch Role(value) {
	case RoleMember:
		return RoleMember, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("invalid role %q", value)
}
