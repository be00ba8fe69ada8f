package vanilla

import (
	"html"
	"strconv"
	"strings"

	"github.com/goliatone/go-gameportal/pkg/forms"
	"github.com/goliatone/go-gameportal/pkg/render"
)

// buildFormMarkup renders a form as declarative HTML. Validation constraints
// become input attributes (required, minlength, maxlength, pattern, title) so
// browsers and client scripts see the same rules the server enforces. Fields
// with an error in opts.Errors carry the invalid class plus a sibling
// error-message element.
func buildFormMarkup(form *forms.Form, opts render.Options) string {
	if form == nil {
		return ""
	}

	var b strings.Builder
	b.Grow(len(form.Fields) * 256)

	b.WriteString(`<form id="`)
	b.WriteString(html.EscapeString(form.ID))
	b.WriteString(`" class="`)
	b.WriteString(string(ClassForm))
	b.WriteString(`" action="`)
	b.WriteString(html.EscapeString(form.Action))
	b.WriteString(`" method="`)
	b.WriteString(html.EscapeString(strings.ToLower(form.Method)))
	b.WriteString("\" novalidate>\n")

	for _, field := range form.Fields {
		writeField(&b, field, opts)
	}

	b.WriteString(`    <div class="`)
	b.WriteString(string(ClassActions))
	b.WriteString("\">\n")
	b.WriteString(`        <button type="submit">` + submitLabel(form.ID) + "</button>\n")
	b.WriteString("    </div>\n")
	b.WriteString("</form>\n")
	return b.String()
}

func writeField(b *strings.Builder, field forms.Field, opts render.Options) {
	message := opts.Errors[field.Name]

	b.WriteString(`    <div class="`)
	b.WriteString(string(ClassField))
	b.WriteString("\">\n")

	if field.Type != forms.FieldTypeHidden && strings.TrimSpace(field.Label) != "" {
		b.WriteString(`        <label for="`)
		b.WriteString(controlID(field.Name))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(field.Label))
		if field.Required {
			b.WriteString(` *`)
		}
		b.WriteString("</label>\n")
	}

	b.WriteString(`        <input type="`)
	b.WriteString(string(field.Type))
	b.WriteString(`" id="`)
	b.WriteString(controlID(field.Name))
	b.WriteString(`" name="`)
	b.WriteString(html.EscapeString(field.Name))
	b.WriteString(`"`)

	if message != "" {
		b.WriteString(` class="` + InvalidInputClass + `"`)
	}
	if value := fieldValue(field, opts); value != "" && field.Type != forms.FieldTypePassword {
		b.WriteString(` value="`)
		b.WriteString(html.EscapeString(value))
		b.WriteString(`"`)
	}
	if field.Placeholder != "" {
		b.WriteString(` placeholder="`)
		b.WriteString(html.EscapeString(field.Placeholder))
		b.WriteString(`"`)
	}
	if field.Required {
		b.WriteString(` required`)
	}
	if field.MinLength != nil {
		b.WriteString(` minlength="`)
		b.WriteString(strconv.Itoa(*field.MinLength))
		b.WriteString(`"`)
	}
	if field.MaxLength != nil {
		b.WriteString(` maxlength="`)
		b.WriteString(strconv.Itoa(*field.MaxLength))
		b.WriteString(`"`)
	}
	if field.Pattern != "" {
		b.WriteString(` pattern="`)
		b.WriteString(html.EscapeString(field.Pattern))
		b.WriteString(`"`)
	}
	if field.Title != "" {
		b.WriteString(` title="`)
		b.WriteString(html.EscapeString(field.Title))
		b.WriteString(`"`)
	}
	b.WriteString(">\n")

	if message != "" {
		b.WriteString(`        <small class="` + ErrorMessageClass + `">`)
		b.WriteString(html.EscapeString(message))
		b.WriteString("</small>\n")
	}

	b.WriteString("    </div>\n")
}

func fieldValue(field forms.Field, opts render.Options) string {
	if value, ok := opts.Values[field.Name]; ok {
		return value
	}
	return field.Value
}

func controlID(name string) string {
	return "gp-" + html.EscapeString(strings.TrimSpace(name))
}

func submitLabel(formID string) string {
	switch formID {
	case "login-form", "loginAccount":
		return "Sign in"
	case "register-form", "registerAccount":
		return "Create account"
	default:
		return "Submit"
	}
}
