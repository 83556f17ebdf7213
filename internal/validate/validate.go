package validate

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nkiryanov/carectl/internal/apperrors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their 'json' tag name instead of struct field name
	v.RegisterTagNameFunc(useJSONTagNames)

	_ = v.RegisterValidation("date", validateDate)
	_ = v.RegisterValidation("timeofday", validateTimeOfDay)
	_ = v.RegisterValidation("cpf", validateCPF)
	_ = v.RegisterValidation("phone", validatePhone)

	return v
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// Errors maps a field name to a human readable message.
// It matches apperrors.ErrValidation with errors.Is.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+e[field])
	}

	return apperrors.ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e Errors) Unwrap() error {
	return apperrors.ErrValidation
}

// Struct validates value using its 'validate' struct tags.
// Returns Errors when any field is invalid.
func Struct(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("validate struct Err: %w", err)
	}

	fields := make(Errors, len(errs))
	for _, fieldError := range errs {
		fields[fieldError.Field()] = message(fieldError)
	}

	return fields
}

// Create user-friendly error messages based on validation tag
func message(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Value is too short (minimum %s)", fieldError.Param())
	case "email":
		return "Invalid email"
	case "date":
		return "Must be a date formatted as YYYY-MM-DD"
	case "timeofday":
		return "Must be a time formatted as HH:MM or HH:MM:SS"
	case "nefield":
		return fmt.Sprintf("Must differ from %s", fieldError.Param())
	case "cpf":
		return "Invalid CPF"
	case "phone":
		return "Invalid phone number"
	default:
		return "Invalid value"
	}
}
