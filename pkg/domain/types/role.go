package types

import "fmt"

// Role represents the portal a session is authenticated for
type Role string

const (
	RoleNone    Role = "none"
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// IsValid checks if the role is valid
func (r Role) IsValid() bool {
	switch r {
	case RoleNone, RolePatient, RoleDoctor:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a string into a Role
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("invalid role: %s", s)
	}
	return role, nil
}
