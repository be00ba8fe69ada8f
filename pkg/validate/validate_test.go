package validate_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-gameportal/pkg/forms"
	"github.com/goliatone/go-gameportal/pkg/validate"
)

func intPtr(n int) *int { return &n }

func TestIsValidEmail(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"a@b.co", true},
		{"player.one@guild.example.com", true},
		{"a@b", false},
		{"a b@c.com", false},
		{"@b.co", false},
		{"a@.co", false},
		{"a@b.", false},
		{"", false},
	}

	for _, tc := range cases {
		if got := validate.IsValidEmail(tc.in); got != tc.want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidate_RequiredField(t *testing.T) {
	form := forms.Form{
		ID: "login-form",
		Fields: []forms.Field{
			{Name: "email", Type: forms.FieldTypeEmail, Label: "Email", Required: true, Value: "player@guild.gg"},
			{Name: "password", Type: forms.FieldTypePassword, Label: "Password", Required: true, Value: "   "},
		},
	}

	result := validate.Validate(form)
	if result.Valid {
		t.Fatal("expected invalid result")
	}

	want := map[string]string{"password": "Password is required"}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_EmailShapeOverridesLengthRules(t *testing.T) {
	form := forms.Form{
		Fields: []forms.Field{
			{
				Name:      "email",
				Type:      forms.FieldTypeEmail,
				Label:     "Email",
				Required:  true,
				MinLength: intPtr(8),
				Value:     "a@b",
			},
		},
	}

	result := validate.Validate(form)
	want := map[string]string{"email": "Please enter a valid email address"}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_PasswordMinimumLength(t *testing.T) {
	explicit := forms.Form{
		Fields: []forms.Field{
			{Name: "password", Type: forms.FieldTypePassword, Label: "Password", MinLength: intPtr(12), Value: "short"},
		},
	}
	result := validate.Validate(explicit)
	if got := result.Errors["password"]; got != "Password must be at least 12 characters" {
		t.Fatalf("explicit minimum message mismatch: %q", got)
	}

	implied := forms.Form{
		Fields: []forms.Field{
			{Name: "password", Type: forms.FieldTypePassword, Label: "Password", Value: "seven77"},
		},
	}
	result = validate.Validate(implied)
	if got := result.Errors["password"]; got != "Password must be at least 8 characters" {
		t.Fatalf("implied minimum message mismatch: %q", got)
	}
}

func TestValidate_GenericLengthMessages(t *testing.T) {
	form := forms.Form{
		Fields: []forms.Field{
			{Name: "username", Label: "Username", Type: forms.FieldTypeText, MinLength: intPtr(3), Value: "ab"},
			{Name: "motto", Label: "Motto", Type: forms.FieldTypeText, MaxLength: intPtr(5), Value: "too long for this"},
		},
	}

	result := validate.Validate(form)
	want := map[string]string{
		"username": "Username must be at least 3 characters",
		"motto":    "Motto must be at most 5 characters",
	}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_BlankOptionalFieldsSkipConstraints(t *testing.T) {
	// Emptiness is only the required rule's concern: an optional field left
	// blank is valid no matter what other constraints it declares.
	form := forms.Form{
		Fields: []forms.Field{
			{Name: "motto", Label: "Motto", Type: forms.FieldTypeText, MinLength: intPtr(5), Value: ""},
			{Name: "alt_email", Label: "Backup email", Type: forms.FieldTypeEmail, Value: ""},
			{Name: "referral", Label: "Referral code", Type: forms.FieldTypeText, Pattern: `^\d{6}$`, Value: "   "},
		},
	}

	result := validate.Validate(form)
	if !result.Valid {
		t.Fatalf("blank optional fields should pass, got %+v", result.Errors)
	}

	// A non-blank value still runs the full constraint list.
	form.SetValue("alt_email", "not-an-email")
	result = validate.Validate(form)
	want := map[string]string{"alt_email": "Please enter a valid email address"}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	// Live feedback follows the same rule.
	form.SetValue("alt_email", "")
	if msg, ok := validate.ValidateField(&form, "alt_email"); !ok || msg != "" {
		t.Fatalf("blank optional live check should pass, got %q, %v", msg, ok)
	}
}

func TestValidate_PatternUsesTitleWhenPresent(t *testing.T) {
	withTitle := forms.Form{
		Fields: []forms.Field{
			{
				Name:    "username",
				Label:   "Username",
				Type:    forms.FieldTypeText,
				Pattern: `^[a-z]+$`,
				Title:   "Lowercase letters only",
				Value:   "Bad Name",
			},
		},
	}
	result := validate.Validate(withTitle)
	if got := result.Errors["username"]; got != "Lowercase letters only" {
		t.Fatalf("title message mismatch: %q", got)
	}

	withoutTitle := forms.Form{
		Fields: []forms.Field{
			{Name: "code", Label: "Invite code", Type: forms.FieldTypeText, Pattern: `^\d{6}$`, Value: "abc"},
		},
	}
	result = validate.Validate(withoutTitle)
	if got := result.Errors["code"]; got != "Invite code has an invalid format" {
		t.Fatalf("generic pattern message mismatch: %q", got)
	}
}

func TestValidate_LastFailingRuleWins(t *testing.T) {
	// Minimum length and pattern both fail; the stored message is the
	// pattern's because it is checked later.
	form := forms.Form{
		Fields: []forms.Field{
			{
				Name:      "username",
				Label:     "Username",
				Type:      forms.FieldTypeText,
				MinLength: intPtr(5),
				Pattern:   `^[a-z]+$`,
				Title:     "Lowercase letters only",
				Value:     "A1",
			},
		},
	}

	result := validate.Validate(form)
	want := map[string]string{"username": "Lowercase letters only"}
	if diff := cmp.Diff(want, result.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	form := forms.Registration()
	form.SetValues(map[string]string{
		"username": "x",
		"email":    "broken",
		"password": "short",
	})

	first := validate.Validate(form)
	second := validate.Validate(form)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("repeat validation diverged (-first +second):\n%s", diff)
	}
}

func TestValidate_CleanRegistrationPasses(t *testing.T) {
	form := forms.Registration()
	form.SetValues(map[string]string{
		"username":         "frost_mage",
		"email":            "frost@guild.gg",
		"password":         "hunter2hunter2",
		"confirm_password": "hunter2hunter2",
	})

	result := validate.Validate(form)
	if !result.Valid {
		t.Fatalf("expected valid form, got errors %+v", result.Errors)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected empty error map, got %+v", result.Errors)
	}
}

func TestValidateField_LiveSubset(t *testing.T) {
	form := forms.Registration()

	if msg, ok := validate.ValidateField(&form, "email"); ok || msg != "Email is required" {
		t.Fatalf("required live check mismatch: %q, %v", msg, ok)
	}

	form.SetValue("email", "not-an-email")
	if msg, ok := validate.ValidateField(&form, "email"); ok || msg != "Please enter a valid email address" {
		t.Fatalf("email live check mismatch: %q, %v", msg, ok)
	}

	form.SetValue("password", "short")
	if msg, ok := validate.ValidateField(&form, "password"); ok || msg != "Password must be at least 8 characters" {
		t.Fatalf("password live check mismatch: %q, %v", msg, ok)
	}

	// Pattern violations are not part of live feedback.
	form.SetValue("username", "Bad Name!")
	if msg, ok := validate.ValidateField(&form, "username"); !ok {
		t.Fatalf("live check should skip pattern rules, got %q", msg)
	}

	// Unknown fields are a silent no-op.
	if msg, ok := validate.ValidateField(&form, "missing"); !ok || msg != "" {
		t.Fatalf("unknown field should be a no-op, got %q, %v", msg, ok)
	}
}
