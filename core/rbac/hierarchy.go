package rbac

import "slices"

// DefaultMasterRole is the role that may edit every role in a hierarchy.
const DefaultMasterRole = "ROLE_SUPER_ADMIN"

// Hierarchy maps a role to the roles it inherits.
//
//	ROLE_ADMIN:       [ROLE_USER]
//	ROLE_SUPER_ADMIN: [ROLE_ADMIN, ROLE_ALLOWED_TO_SWITCH]
type Hierarchy map[string][]string

// Names returns the top-level roles in sorted order.
func (h Hierarchy) Names() []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Reachable returns every role granted by roles, including inherited ones.
func (h Hierarchy) Reachable(roles []string) map[string]struct{} {
	out := make(map[string]struct{}, len(roles))
	stack := slices.Clone(roles)
	for len(stack) > 0 {
		role := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := out[role]; ok {
			continue
		}
		out[role] = struct{}{}
		stack = append(stack, h[role]...)
	}
	return out
}
