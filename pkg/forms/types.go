// Package forms models the portal's declarative form definitions: each field
// carries the constraint attributes the validator and renderers read, the same
// attributes the served markup exposes to the browser.
package forms

// FieldType is the declared input kind of a field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeEmail    FieldType = "email"
	FieldTypePassword FieldType = "password"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeHidden   FieldType = "hidden"
)

// Field models one form control plus its declarative constraints. MinLength
// and MaxLength are pointers so "attribute absent" stays distinguishable from
// an explicit zero.
type Field struct {
	Name        string
	Type        FieldType
	Label       string
	Placeholder string

	// Title is the human-readable message associated with Pattern.
	Title string

	Required  bool
	MinLength *int
	MaxLength *int
	Pattern   string

	// Value is the field's current string value.
	Value string

	Metadata map[string]string
}

// Form is a named collection of fields plus its submission target.
type Form struct {
	ID     string
	Action string
	Method string
	Fields []Field
}

// Field returns a pointer to the named field, or nil when absent.
func (f *Form) Field(name string) *Field {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i]
		}
	}
	return nil
}

// SetValue assigns the named field's current value. It reports whether the
// field exists.
func (f *Form) SetValue(name, value string) bool {
	field := f.Field(name)
	if field == nil {
		return false
	}
	field.Value = value
	return true
}

// SetValues assigns values in bulk, ignoring unknown names.
func (f *Form) SetValues(values map[string]string) {
	for name, value := range values {
		f.SetValue(name, value)
	}
}

// Values returns the current value of every field keyed by name.
func (f *Form) Values() map[string]string {
	out := make(map[string]string, len(f.Fields))
	for _, field := range f.Fields {
		out[field.Name] = field.Value
	}
	return out
}

// Clone deep-copies the form so callers can fill values without mutating a
// shared definition.
func (f Form) Clone() Form {
	cloned := f
	cloned.Fields = make([]Field, len(f.Fields))
	for i, field := range f.Fields {
		if field.MinLength != nil {
			min := *field.MinLength
			field.MinLength = &min
		}
		if field.MaxLength != nil {
			max := *field.MaxLength
			field.MaxLength = &max
		}
		if len(field.Metadata) > 0 {
			meta := make(map[string]string, len(field.Metadata))
			for k, v := range field.Metadata {
				meta[k] = v
			}
			field.Metadata = meta
		}
		cloned.Fields[i] = field
	}
	return cloned
}
