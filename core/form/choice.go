// Package form provides a framework-agnostic choice field.
//
// A ChoiceField holds a fixed list of choices and validates submitted values
// against it. Higher-level fields (such as the role selector in core/rbac)
// wrap a ChoiceField and add a model Transformer instead of re-implementing
// the validation.
//
// # Example
//
//	field := form.NewChoiceField([]form.Choice[string]{
//	    {Value: "red", Label: "Red"},
//	    {Value: "blue", Label: "Blue"},
//	}, form.Multiple[string]())
//
//	values, err := field.Submit([]string{"blue"})
package form

import (
	"errors"
	"fmt"
)

var (
	// ErrRequired is returned when a required field receives no value.
	ErrRequired = errors.New("form: value is required")
	// ErrMultipleValues is returned when a single-value field receives more than one value.
	ErrMultipleValues = errors.New("form: field accepts a single value")
)

// TransformationFailedError reports a submitted value that could not be
// mapped to a choice. The field is not synchronized and carries no data.
type TransformationFailedError struct {
	Value any
	Err   error
}

func (e *TransformationFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("form: unable to transform value %v: %v", e.Value, e.Err)
	}
	return fmt.Sprintf("form: value %v is not a valid choice", e.Value)
}

func (e *TransformationFailedError) Unwrap() error { return e.Err }

// Choice is a single selectable entry.
type Choice[T comparable] struct {
	Value    T      `json:"value"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled,omitempty"`
}

// Transformer converts validated view values into model data.
type Transformer[T comparable] interface {
	ReverseTransform(values []T) ([]T, error)
}

// TransformerFunc adapts a function to Transformer.
type TransformerFunc[T comparable] func(values []T) ([]T, error)

func (f TransformerFunc[T]) ReverseTransform(values []T) ([]T, error) { return f(values) }

// Option configures a ChoiceField.
type Option[T comparable] func(*ChoiceField[T])

// Multiple allows more than one value per submission.
func Multiple[T comparable]() Option[T] {
	return func(f *ChoiceField[T]) { f.multiple = true }
}

// Required rejects empty submissions.
func Required[T comparable]() Option[T] {
	return func(f *ChoiceField[T]) { f.required = true }
}

// WithTransformer sets the model transformer applied after validation.
func WithTransformer[T comparable](t Transformer[T]) Option[T] {
	return func(f *ChoiceField[T]) { f.transformer = t }
}

// ChoiceField validates submissions against a fixed set of choices.
type ChoiceField[T comparable] struct {
	choices     []Choice[T]
	index       map[T]int
	multiple    bool
	required    bool
	transformer Transformer[T]
}

func NewChoiceField[T comparable](choices []Choice[T], opts ...Option[T]) *ChoiceField[T] {
	f := &ChoiceField[T]{
		choices: choices,
		index:   make(map[T]int, len(choices)),
	}
	for i, c := range choices {
		f.index[c.Value] = i
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Choices returns the configured choices in declaration order.
func (f *ChoiceField[T]) Choices() []Choice[T] {
	out := make([]Choice[T], len(f.choices))
	copy(out, f.choices)
	return out
}

func (f *ChoiceField[T]) IsMultiple() bool { return f.multiple }

func (f *ChoiceField[T]) IsRequired() bool { return f.required }

// Has reports whether v is an enabled choice.
func (f *ChoiceField[T]) Has(v T) bool {
	i, ok := f.index[v]
	return ok && !f.choices[i].Disabled
}

// Submit validates values and returns the transformed model data.
// Validation is all-or-nothing: on error the returned slice is nil.
// Duplicate values are collapsed, keeping the first occurrence.
func (f *ChoiceField[T]) Submit(values []T) ([]T, error) {
	if len(values) == 0 && f.required {
		return nil, ErrRequired
	}

	seen := make(map[T]struct{}, len(values))
	selected := make([]T, 0, len(values))
	for _, v := range values {
		if !f.Has(v) {
			return nil, &TransformationFailedError{Value: v}
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		selected = append(selected, v)
	}

	if !f.multiple && len(selected) > 1 {
		return nil, ErrMultipleValues
	}

	if f.transformer == nil {
		return selected, nil
	}

	data, err := f.transformer.ReverseTransform(selected)
	if err != nil {
		return nil, &TransformationFailedError{Value: selected, Err: err}
	}
	return data, nil
}
