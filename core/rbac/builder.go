package rbac

import (
	"slices"
	"strings"
)

// RoleSource provides the catalog a RoleChoiceField offers.
type RoleSource interface {
	// GetRoles returns the editable roles mapped to their display label.
	GetRoles() (map[string]string, error)
	// GetRolesReadOnly returns roles that are shown but cannot be toggled.
	GetRolesReadOnly() ([]string, error)
}

// EditableRolesBuilder derives the editable catalog from a role hierarchy
// and the roles held by the editor. An editor may grant any hierarchy entry
// they hold themselves, directly or by inheritance; an editor holding the
// master role may grant everything.
type EditableRolesBuilder struct {
	hierarchy  Hierarchy
	granted    map[string]struct{}
	masterRole string
}

// BuilderOption configures an EditableRolesBuilder.
type BuilderOption func(*EditableRolesBuilder)

// WithMasterRole overrides DefaultMasterRole.
func WithMasterRole(role string) BuilderOption {
	return func(b *EditableRolesBuilder) { b.masterRole = role }
}

func NewEditableRolesBuilder(hierarchy Hierarchy, editorRoles []string, opts ...BuilderOption) *EditableRolesBuilder {
	b := &EditableRolesBuilder{
		hierarchy:  hierarchy,
		masterRole: DefaultMasterRole,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.granted = hierarchy.Reachable(editorRoles)
	return b
}

func (b *EditableRolesBuilder) isGranted(role string) bool {
	_, ok := b.granted[role]
	return ok
}

func (b *EditableRolesBuilder) isMaster() bool {
	return b.masterRole != "" && b.isGranted(b.masterRole)
}

// GetRoles labels each hierarchy entry as "ROLE: CHILD_A, CHILD_B".
// Inherited roles that are not entries themselves are labelled by name.
func (b *EditableRolesBuilder) GetRoles() (map[string]string, error) {
	master := b.isMaster()
	roles := make(map[string]string)
	for _, name := range b.hierarchy.Names() {
		if !master && !b.isGranted(name) {
			continue
		}
		children := b.hierarchy[name]
		if len(children) == 0 {
			roles[name] = name
		} else {
			roles[name] = name + ": " + strings.Join(children, ", ")
		}
		for _, child := range children {
			if _, ok := roles[child]; !ok {
				roles[child] = child
			}
		}
	}
	return roles, nil
}

// GetRolesReadOnly returns the hierarchy roles the editor cannot grant.
func (b *EditableRolesBuilder) GetRolesReadOnly() ([]string, error) {
	if b.isMaster() {
		return []string{}, nil
	}

	editable, err := b.GetRoles()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var readOnly []string
	add := func(role string) {
		if _, ok := editable[role]; ok {
			return
		}
		if _, ok := seen[role]; ok {
			return
		}
		seen[role] = struct{}{}
		readOnly = append(readOnly, role)
	}
	for name, children := range b.hierarchy {
		add(name)
		for _, child := range children {
			add(child)
		}
	}
	slices.Sort(readOnly)
	if readOnly == nil {
		readOnly = []string{}
	}
	return readOnly, nil
}
