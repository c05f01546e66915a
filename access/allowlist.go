// Package access holds the per-route role allow-lists enforced by the role guard.
package access

import (
	"fmt"
	"strings"

	"github.com/upb/studio-dashboard/session"
)

// AllowList is an immutable set of roles permitted to reach a route subtree.
// The zero value allows nobody.
type AllowList struct {
	roles []session.Role
	set   map[session.Role]struct{}
}

// NewAllowList builds an AllowList from roles. Duplicates are collapsed and
// declaration order is kept. It panics on a role outside the closed set, so
// a misspelled role fails at registration time instead of silently denying.
func NewAllowList(roles ...session.Role) AllowList {
	a := AllowList{set: make(map[session.Role]struct{}, len(roles))}
	for _, r := range roles {
		if !r.Valid() {
			panic(fmt.Sprintf("access: %q is not a dashboard role", string(r)))
		}
		if _, dup := a.set[r]; dup {
			continue
		}
		a.set[r] = struct{}{}
		a.roles = append(a.roles, r)
	}
	return a
}

// ParseAllowList builds an AllowList from role names
func ParseAllowList(names ...string) (AllowList, error) {
	roles := make([]session.Role, 0, len(names))
	for _, name := range names {
		r, err := session.ParseRole(name)
		if err != nil {
			return AllowList{}, err
		}
		roles = append(roles, r)
	}
	return NewAllowList(roles...), nil
}

var (
	// DashboardRoot guards everything under the dashboard layout
	DashboardRoot = NewAllowList(session.RoleDesigner, session.RoleAdmin, session.RoleUser, session.RoleEditor)

	// DesignerFlow guards the designer flow pages
	DesignerFlow = NewAllowList(session.RoleDesigner, session.RoleAdmin)
)

// Contains reports whether r is in the list
func (a AllowList) Contains(r session.Role) bool {
	_, ok := a.set[r]
	return ok
}

// Allows reports whether the session's role is in the list. A nil session
// or one without a recognised role is never allowed.
func (a AllowList) Allows(s *session.Session) bool {
	if s == nil || !s.Role.Valid() {
		return false
	}
	return a.Contains(s.Role)
}

// Roles returns a copy of the roles in declaration order
func (a AllowList) Roles() []session.Role {
	out := make([]session.Role, len(a.roles))
	copy(out, a.roles)
	return out
}

// Len returns the number of roles
func (a AllowList) Len() int {
	return len(a.roles)
}

func (a AllowList) String() string {
	names := make([]string, len(a.roles))
	for i, r := range a.roles {
		names[i] = string(r)
	}
	return "[" + strings.Join(names, ", ") + "]"
}
