package forms

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-gameportal/pkg/openapi"
)

// FromOperation builds a Form from a contract operation's request body.
// String constraints (minLength, maxLength, pattern) survive as field
// attributes so renderers can emit them declaratively.
func FromOperation(op openapi.Operation) (Form, error) {
	body := op.RequestBody
	if body.Type != "object" || len(body.Properties) == 0 {
		return Form{}, fmt.Errorf("forms: operation %q has no object request body", op.ID)
	}

	names := make([]string, 0, len(body.Properties))
	for name := range body.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	form := Form{
		ID:     op.ID,
		Action: op.Path,
		Method: op.Method,
		Fields: make([]Field, 0, len(names)),
	}
	for _, name := range names {
		form.Fields = append(form.Fields, fieldFromSchema(name, body.Properties[name], body.IsRequired(name)))
	}
	return form, nil
}

func fieldFromSchema(name string, schema openapi.Schema, required bool) Field {
	field := Field{
		Name:     name,
		Type:     fieldTypeFor(schema),
		Label:    labelFor(name),
		Title:    schema.Title,
		Required: required,
		Pattern:  schema.Pattern,
	}
	if schema.MinLength != nil {
		v := *schema.MinLength
		field.MinLength = &v
	}
	if schema.MaxLength != nil {
		v := *schema.MaxLength
		field.MaxLength = &v
	}
	if schema.Description != "" {
		field.Placeholder = schema.Description
	}
	if schema.Default != nil {
		field.Value = fmt.Sprint(schema.Default)
	}
	return field
}

func fieldTypeFor(schema openapi.Schema) FieldType {
	switch schema.Format {
	case "email":
		return FieldTypeEmail
	case "password":
		return FieldTypePassword
	}
	if schema.Type == "boolean" {
		return FieldTypeCheckbox
	}
	return FieldTypeText
}

// labelFor turns snake_case property names into display labels, so
// "confirm_password" renders as "Confirm password".
func labelFor(name string) string {
	cleaned := strings.ReplaceAll(name, "_", " ")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return name
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}
