// Package validate applies a form's declarative constraints to its current
// values. Violations are data, never errors: a validation pass yields a
// Result mapping field names to messages, which callers feed to the error
// display layer.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-gameportal/pkg/forms"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether s has the local@domain.tld shape: a non-empty
// run without whitespace or "@", an "@", a domain, a dot, and a final
// segment.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Result is the outcome of one validation pass. Errors holds one message per
// failing field.
type Result struct {
	Valid  bool
	Errors map[string]string
}

// Validate runs every field through its ordered checks and collects one
// message per failing field. A blank value short-circuits: required fields
// record the required message, optional fields are valid no matter what
// other constraints they declare (emptiness is only the required rule's
// concern). For non-blank values a failing email-shape check keeps its
// message and stops; among the remaining checks a later violation replaces
// an earlier one, so the stored message is the last failing check's.
// Validating an unchanged form twice yields identical results.
func Validate(form forms.Form) Result {
	errs := make(map[string]string)

	for _, field := range form.Fields {
		if strings.TrimSpace(field.Value) == "" {
			if field.Required {
				errs[field.Name] = requiredMessage(field)
			}
			continue
		}

		if msg, failed := evaluate(field.Value, stepsFor(field)); failed {
			errs[field.Name] = msg
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

// ValidateField checks a single field with the reduced live-feedback rule
// set: required/empty, email shape, minimum length. It reports the first
// state suited for inline display; an unknown field name is a silent no-op.
func ValidateField(form *forms.Form, name string) (message string, valid bool) {
	if form == nil {
		return "", true
	}
	field := form.Field(name)
	if field == nil {
		return "", true
	}

	if strings.TrimSpace(field.Value) == "" {
		if field.Required {
			return requiredMessage(*field), false
		}
		return "", true
	}

	if msg, failed := evaluate(field.Value, liveStepsFor(*field)); failed {
		return msg, false
	}
	return "", true
}

func requiredMessage(field forms.Field) string {
	return fmt.Sprintf("%s is required", fieldLabel(field))
}
