package session

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownRole is returned when a role name is not one of the known roles
var ErrUnknownRole = errors.New("unknown role")

// Role is the dashboard role claim carried by a session
type Role string

const (
	RoleDesigner Role = "Designer"
	RoleAdmin    Role = "Admin"
	RoleUser     Role = "User"
	RoleEditor   Role = "Editor"
)

var knownRoles = []Role{RoleDesigner, RoleAdmin, RoleUser, RoleEditor}

// Roles returns every known role in declaration order
func Roles() []Role {
	out := make([]Role, len(knownRoles))
	copy(out, knownRoles)
	return out
}

// ParseRole converts a role name into a Role. Matching ignores case and
// surrounding whitespace; anything else fails with ErrUnknownRole.
func ParseRole(name string) (Role, error) {
	trimmed := strings.TrimSpace(name)
	for _, r := range knownRoles {
		if strings.EqualFold(string(r), trimmed) {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	for _, known := range knownRoles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) String() string {
	return string(r)
}
