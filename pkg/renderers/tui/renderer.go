package tui

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-gameportal/pkg/forms"
	"github.com/goliatone/go-gameportal/pkg/render"
	"github.com/goliatone/go-gameportal/pkg/validate"
)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// Renderer drives portal pages as interactive terminal prompts. Form fields
// are validated as they are entered, using the same rules the HTML renderer
// declares as input attributes.
type Renderer struct {
	driver PromptDriver
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the TUI renderer with a survey-backed driver by default.
func New(options ...Option) *Renderer {
	r := &Renderer{driver: newSurveyDriver()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Renderer) Name() string {
	return "tui"
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render walks the page interactively and returns a text summary. For form
// pages the summary lists the collected values with passwords masked.
func (r *Renderer) Render(ctx context.Context, page render.Page, opts render.Options) ([]byte, error) {
	if r.driver == nil {
		return nil, ErrMissingDriver
	}

	var b strings.Builder
	writeChrome(&b, page, opts)

	if page.Form != nil {
		values, err := r.CollectValues(ctx, page.Form)
		if err != nil {
			return nil, err
		}
		writeValues(&b, page.Form, values)
	}

	return []byte(b.String()), nil
}

// CollectValues prompts for every field on the form and returns the entered
// values keyed by field name. Each answer is validated before the prompt
// advances, so the returned map always passes the form's rules.
func (r *Renderer) CollectValues(ctx context.Context, form *forms.Form) (map[string]string, error) {
	if r.driver == nil {
		return nil, ErrMissingDriver
	}
	if form == nil {
		return nil, fmt.Errorf("tui: form is nil")
	}

	working := form.Clone()
	values := make(map[string]string, len(form.Fields))

	for _, field := range form.Fields {
		if field.Type == forms.FieldTypeHidden {
			values[field.Name] = field.Value
			continue
		}

		if field.Type == forms.FieldTypeCheckbox {
			checked, err := r.driver.Confirm(ctx, ConfirmConfig{
				Message: promptMessage(field),
				Default: field.Value == "true",
			})
			if err != nil {
				return nil, err
			}
			values[field.Name] = fmt.Sprintf("%t", checked)
			working.SetValue(field.Name, values[field.Name])
			continue
		}

		cfg := InputConfig{
			Message:     promptMessage(field),
			Default:     field.Value,
			Placeholder: field.Placeholder,
			Help:        field.Title,
			Validator:   fieldValidator(&working, field.Name),
		}

		var (
			answer string
			err    error
		)
		if field.Type == forms.FieldTypePassword {
			answer, err = r.driver.Password(ctx, cfg)
		} else {
			answer, err = r.driver.Input(ctx, cfg)
		}
		if err != nil {
			return nil, err
		}

		values[field.Name] = answer
		working.SetValue(field.Name, answer)
	}

	// Drivers are expected to run the per-prompt validators, but a final
	// pass guards against implementations that skip them.
	if result := validate.Validate(working); !result.Valid {
		for name, message := range result.Errors {
			return nil, fmt.Errorf("tui: field %s: %s", name, message)
		}
	}

	return values, nil
}

func fieldValidator(form *forms.Form, name string) func(string) error {
	return func(input string) error {
		probe := form.Clone()
		probe.SetValue(name, input)
		if message, ok := validate.ValidateField(&probe, name); !ok {
			return fmt.Errorf("%s", message)
		}
		return nil
	}
}

func promptMessage(field forms.Field) string {
	label := strings.TrimSpace(field.Label)
	if label == "" {
		label = field.Name
	}
	if field.Required {
		return label + " *"
	}
	return label
}

func writeChrome(b *strings.Builder, page render.Page, opts render.Options) {
	title := page.Title
	if title == "" {
		title = string(page.Name)
	}
	b.WriteString("== " + title + " ==\n")

	if opts.Session != nil {
		name := opts.Session.DisplayName
		if name == "" {
			name = opts.Session.Email
		}
		b.WriteString("Signed in as " + name + "\n")
	}
	if opts.PlayersOnline != nil {
		fmt.Fprintf(b, "%d players online\n", *opts.PlayersOnline)
	}
	for _, notice := range opts.Notices {
		b.WriteString("! " + notice + "\n")
	}
}

func writeValues(b *strings.Builder, form *forms.Form, values map[string]string) {
	for _, field := range form.Fields {
		value := values[field.Name]
		if field.Type == forms.FieldTypePassword {
			value = strings.Repeat("*", utf8.RuneCountInString(value))
		}
		fmt.Fprintf(b, "%s: %s\n", field.Name, value)
	}
}
