// Package validation checks submitted forms against their declared schema and
// provides common validation utilities.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// User-facing texts for missing input.
const (
	MissingInformationTitle = "Missing Information"
	MissingFieldsMessage    = "Please fill all required fields."
	MissingEMIInputsMessage = "Please fill loan amount, interest rate, and tenure to calculate EMI."
)

// MissingFieldsError reports that one or more required form fields were empty.
// Message is what the user sees; Fields is kept for logs.
type MissingFieldsError struct {
	Fields  []string
	Message string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Validator checks forms declared with `validate` struct tags. Field names in
// errors are the json keys, which are also the form field names.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator.
func New() *Validator {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		return fieldName(field)
	})
	return &Validator{validate: validate}
}

// Validate checks form and returns a *MissingFieldsError carrying the generic
// "Please fill all required fields." message when anything required is empty.
func (v *Validator) Validate(form any) error {
	return v.Check(form, MissingFieldsMessage)
}

// Check is Validate with a caller-supplied user message.
func (v *Validator) Check(form any, message string) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validate %T: %w", form, err)
	}

	fields := make([]string, 0, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields = append(fields, fieldErr.Field())
	}
	return &MissingFieldsError{Fields: fields, Message: message}
}

// fieldName returns the json key of a struct field, or "" when it has none.
func fieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}
