// Package validation turns form structs into per-field error messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messager lets a form override the message for a rule. Keys are "field.tag"
// (for example "name.min") or just "field" to cover every rule of that field.
type Messager interface {
	Messages() map[string]string
}

// Validator checks `validate` struct tags and reports errors keyed by the `form` tag.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s and returns field errors, or nil when s is valid.
// Only the first failing rule of each field is reported.
func (v *Validator) Struct(s any) (map[string]string, error) {
	err := v.v.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	var overrides map[string]string
	if m, ok := s.(Messager); ok {
		overrides = m.Messages()
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(fe, overrides)
	}
	return out, nil
}

func message(fe validator.FieldError, overrides map[string]string) string {
	if msg, ok := overrides[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := overrides[fe.Field()]; ok {
		return msg
	}

	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters.", label, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s.", label, humanize(fe.Param()))
	default:
		return label + " is invalid."
	}
}

// humanize turns "confirmPassword" or "ConfirmPassword" into "Confirm password".
func humanize(name string) string {
	if name == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(string(r)))
		case r == '_' || r == '-':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
