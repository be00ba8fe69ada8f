package validate

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/goliatone/go-gameportal/pkg/forms"
)

// defaultPasswordMinLength applies to password fields that declare no
// explicit minimum-length attribute.
const defaultPasswordMinLength = 8

// rule is one typed check in the fixed evaluation order for a field. check
// returns the violation message and whether the rule failed.
type rule interface {
	check(value string) (string, bool)
}

// step pairs a rule with its halting behaviour: a failing halting step keeps
// its message and stops evaluation, while later failing non-halting steps
// overwrite whatever an earlier step stored.
type step struct {
	rule
	haltOnFail bool
}

// emailRule validates the local@domain.tld shape of email-typed fields.
type emailRule struct{}

func (emailRule) check(value string) (string, bool) {
	if IsValidEmail(value) {
		return "", false
	}
	return "Please enter a valid email address", true
}

// minLengthRule enforces a minimum value length, with a password-specific
// message for password-typed fields.
type minLengthRule struct {
	min      int
	label    string
	password bool
}

func (r minLengthRule) check(value string) (string, bool) {
	if utf8.RuneCountInString(value) >= r.min {
		return "", false
	}
	if r.password {
		return fmt.Sprintf("Password must be at least %d characters", r.min), true
	}
	return fmt.Sprintf("%s must be at least %d characters", r.label, r.min), true
}

// maxLengthRule enforces a maximum value length.
type maxLengthRule struct {
	max   int
	label string
}

func (r maxLengthRule) check(value string) (string, bool) {
	if utf8.RuneCountInString(value) <= r.max {
		return "", false
	}
	return fmt.Sprintf("%s must be at most %d characters", r.label, r.max), true
}

// patternRule matches the value against a declared expression. The field's
// title attribute, when present, becomes the violation message. An expression
// that fails to compile never flags the value.
type patternRule struct {
	expr  string
	title string
	label string
}

func (r patternRule) check(value string) (string, bool) {
	re, err := regexp.Compile(r.expr)
	if err != nil || re.MatchString(value) {
		return "", false
	}
	if r.title != "" {
		return r.title, true
	}
	return fmt.Sprintf("%s has an invalid format", r.label), true
}

// stepsFor builds the ordered check list derived from a field's declarative
// attributes: email shape (halting), minimum length, maximum length,
// pattern. The required/empty check runs before any of these and is handled
// by the caller.
func stepsFor(field forms.Field) []step {
	label := fieldLabel(field)
	var steps []step

	if field.Type == forms.FieldTypeEmail {
		steps = append(steps, step{rule: emailRule{}, haltOnFail: true})
	}

	min := field.MinLength
	if min == nil && field.Type == forms.FieldTypePassword {
		fallback := defaultPasswordMinLength
		min = &fallback
	}
	if min != nil {
		steps = append(steps, step{rule: minLengthRule{
			min:      *min,
			label:    label,
			password: field.Type == forms.FieldTypePassword,
		}})
	}

	if field.MaxLength != nil {
		steps = append(steps, step{rule: maxLengthRule{max: *field.MaxLength, label: label}})
	}

	if field.Pattern != "" {
		steps = append(steps, step{rule: patternRule{expr: field.Pattern, title: field.Title, label: label}})
	}

	return steps
}

// liveStepsFor is the reduced list used for per-keystroke feedback: email
// shape and minimum length only.
func liveStepsFor(field forms.Field) []step {
	var steps []step
	for _, s := range stepsFor(field) {
		switch s.rule.(type) {
		case emailRule, minLengthRule:
			steps = append(steps, s)
		}
	}
	return steps
}

// evaluate runs the steps in order and returns the retained message, if any.
func evaluate(value string, steps []step) (string, bool) {
	var message string
	var failed bool
	for _, s := range steps {
		msg, bad := s.check(value)
		if !bad {
			continue
		}
		message = msg
		failed = true
		if s.haltOnFail {
			break
		}
	}
	return message, failed
}

func fieldLabel(field forms.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}
