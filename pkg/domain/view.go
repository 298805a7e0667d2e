package domain

import (
	"fmt"
)

// FieldKind tells the host which input control to draw.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextArea FieldKind = "textarea"
	FieldNumber   FieldKind = "number"
	FieldPhone    FieldKind = "tel"
	FieldChoice   FieldKind = "choice"
)

// FieldSetter writes one form value. Content strategies receive it from the engine.
type FieldSetter func(field string, value any)

// Field is one editable control of a View.
type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Kind        FieldKind `json:"kind"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Value       any       `json:"value,omitempty"`

	set func(any)
}

// View is the form surface produced by a content strategy.
// Body is markdown; informational actions may have a body and no fields.
type View struct {
	Body   string  `json:"body,omitempty"`
	Fields []Field `json:"fields,omitempty"`
}

// Bind returns a field whose Set writes through setter.
func Bind(f Field, form FormData, setter FieldSetter) Field {
	f.Value = form[f.Name]
	if setter != nil {
		name := f.Name
		f.set = func(v any) { setter(name, v) }
	}
	return f
}

// Set routes a value to the named field's setter.
func (v View) Set(name string, value any) error {
	for _, f := range v.Fields {
		if f.Name != name {
			continue
		}
		if f.set == nil {
			return fmt.Errorf("field %q is read-only", name)
		}
		f.set(value)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownField, name)
}

// SetAll writes several values. Every name is checked before any setter runs,
// so a rejected batch leaves the form as it was. Values are applied in name order.
func (v View) SetAll(values FormData) error {
	for _, name := range values.Keys() {
		f, ok := v.Field(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		if f.set == nil {
			return fmt.Errorf("field %q is read-only", name)
		}
	}
	for _, name := range values.Keys() {
		f, _ := v.Field(name)
		f.set(values[name])
	}
	return nil
}

// Field returns the named field.
func (v View) Field(name string) (Field, bool) {
	for _, f := range v.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
