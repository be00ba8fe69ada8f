package render

import (
	"sort"
	"sync"
)

// FieldError is the visual annotation attached to one field: the invalid
// marking plus the inline message shown immediately after the control.
type FieldError struct {
	Field   string
	Message string
}

// ErrorDisplay tracks which fields are currently marked invalid. The state is
// fully derived from the most recent validation pass: Display wipes whatever
// was shown before, Clear removes everything and may be called at any time.
type ErrorDisplay struct {
	mu    sync.Mutex
	marks map[string]string
}

// NewErrorDisplay returns an empty display.
func NewErrorDisplay() *ErrorDisplay {
	return &ErrorDisplay{marks: make(map[string]string)}
}

// Display replaces every current annotation with one entry per failing field.
func (d *ErrorDisplay) Display(errors map[string]string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.marks = make(map[string]string, len(errors))
	for field, message := range errors {
		d.marks[field] = message
	}
}

// Clear removes all annotations. Calling it repeatedly is harmless.
func (d *ErrorDisplay) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.marks = make(map[string]string)
}

// Invalid reports whether the named field is currently marked.
func (d *ErrorDisplay) Invalid(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.marks[name]
	return ok
}

// Message returns the inline message for the named field.
func (d *ErrorDisplay) Message(name string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	msg, ok := d.marks[name]
	return msg, ok
}

// Empty reports whether no field is marked.
func (d *ErrorDisplay) Empty() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.marks) == 0
}

// Snapshot returns the annotations sorted by field name, ready for a
// renderer to consume.
func (d *ErrorDisplay) Snapshot() []FieldError {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.marks) == 0 {
		return nil
	}

	names := make([]string, 0, len(d.marks))
	for name := range d.marks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]FieldError, 0, len(names))
	for _, name := range names {
		out = append(out, FieldError{Field: name, Message: d.marks[name]})
	}
	return out
}

// Errors returns a copy of the annotations keyed by field name.
func (d *ErrorDisplay) Errors() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.marks) == 0 {
		return nil
	}
	out := make(map[string]string, len(d.marks))
	for field, message := range d.marks {
		out[field] = message
	}
	return out
}
