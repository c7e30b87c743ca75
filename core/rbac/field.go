package rbac

import (
	"errors"
	"fmt"
	"slices"

	"github.com/getkayan/kayan-roles/core/form"
	"github.com/getkayan/kayan-roles/core/logger"
	"go.uber.org/zap"
)

// ErrUnknownRole matches every *UnknownRoleError.
var ErrUnknownRole = errors.New("rbac: unknown role")

// UnknownRoleError is returned when a submission names a role outside the
// editable catalog. The whole submission is rejected.
type UnknownRoleError struct {
	Role string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("rbac: unknown role %q", e.Role)
}

func (e *UnknownRoleError) Is(target error) bool { return target == ErrUnknownRole }

// Options describes what a RoleChoiceField offers.
type Options struct {
	// Choices holds one enabled entry per editable role, sorted by role.
	Choices []form.Choice[string] `json:"choices"`
	// ReadOnly holds the read-only roles as disabled entries.
	ReadOnly []form.Choice[string] `json:"read_only"`
	Multiple bool                  `json:"multiple"`
	Required bool                  `json:"required"`
}

// Selection is the result of a synchronized submission.
type Selection struct {
	// Roles is the sorted union of the submitted roles and the hidden roles.
	Roles []string `json:"roles"`
	// Hidden lists prior roles that were kept because they are not editable.
	Hidden []string `json:"hidden"`
}

// Contains reports whether role is part of the selection.
func (s *Selection) Contains(role string) bool {
	_, found := slices.BinarySearch(s.Roles, role)
	return found
}

// RoleChoiceField offers the roles of a RoleSource as a multi-select field
// and resolves submissions against them.
type RoleChoiceField struct {
	source RoleSource
}

func NewRoleChoiceField(source RoleSource) *RoleChoiceField {
	return &RoleChoiceField{source: source}
}

// Configure returns the selectable choices for the current catalog.
func (f *RoleChoiceField) Configure() (*Options, error) {
	field, err := f.choiceField(nil)
	if err != nil {
		return nil, err
	}

	readOnly, err := f.source.GetRolesReadOnly()
	if err != nil {
		return nil, fmt.Errorf("rbac: failed to load read-only roles: %w", err)
	}

	opts := &Options{
		Choices:  field.Choices(),
		ReadOnly: make([]form.Choice[string], 0, len(readOnly)),
		Multiple: field.IsMultiple(),
		Required: field.IsRequired(),
	}
	for _, role := range readOnly {
		opts.ReadOnly = append(opts.ReadOnly, form.Choice[string]{Value: role, Label: role, Disabled: true})
	}
	return opts, nil
}

// Submit validates submission against the catalog and merges it with the
// prior roles that the catalog does not offer. Any unknown role fails the
// whole submission with an *UnknownRoleError and a nil Selection.
func (f *RoleChoiceField) Submit(prior, submission []string) (*Selection, error) {
	var hidden []string
	field, err := f.choiceField(func(catalog map[string]string) form.Transformer[string] {
		hidden = hiddenRoles(catalog, prior)
		return restoreRoles(hidden)
	})
	if err != nil {
		return nil, err
	}

	roles, err := field.Submit(submission)
	if err != nil {
		var tfe *form.TransformationFailedError
		if errors.As(err, &tfe) {
			if role, ok := tfe.Value.(string); ok {
				logger.Log.Debug("role submission rejected", zap.String("role", role))
				return nil, &UnknownRoleError{Role: role}
			}
		}
		return nil, err
	}

	return &Selection{Roles: roles, Hidden: hidden}, nil
}

// choiceField builds the underlying multi-select field from the current
// catalog. transformer, when set, receives the catalog to build the model
// transformer from.
func (f *RoleChoiceField) choiceField(transformer func(map[string]string) form.Transformer[string]) (*form.ChoiceField[string], error) {
	catalog, err := f.source.GetRoles()
	if err != nil {
		return nil, fmt.Errorf("rbac: failed to load roles: %w", err)
	}

	keys := make([]string, 0, len(catalog))
	for role := range catalog {
		keys = append(keys, role)
	}
	slices.Sort(keys)

	choices := make([]form.Choice[string], 0, len(keys))
	for _, role := range keys {
		choices = append(choices, form.Choice[string]{Value: role, Label: catalog[role]})
	}

	opts := []form.Option[string]{form.Multiple[string]()}
	if transformer != nil {
		opts = append(opts, form.WithTransformer(transformer(catalog)))
	}
	return form.NewChoiceField(choices, opts...), nil
}

// hiddenRoles returns the prior roles absent from the catalog, sorted and
// deduplicated.
func hiddenRoles(catalog map[string]string, prior []string) []string {
	hidden := make([]string, 0, len(prior))
	for _, role := range prior {
		if _, ok := catalog[role]; !ok {
			hidden = append(hidden, role)
		}
	}
	slices.Sort(hidden)
	return slices.Compact(hidden)
}

func restoreRoles(hidden []string) form.Transformer[string] {
	return form.TransformerFunc[string](func(selected []string) ([]string, error) {
		roles := make([]string, 0, len(selected)+len(hidden))
		roles = append(roles, selected...)
		roles = append(roles, hidden...)
		slices.Sort(roles)
		return slices.Compact(roles), nil
	})
}
