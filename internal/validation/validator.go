// Package validation turns validator/v10 errors and upload checks into a
// structured violation list returned to clients with HTTP 400.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Violation is one failed constraint
type Violation struct {
	PropertyPath string `json:"propertyPath"`
	Title        string `json:"title"`
	Code         string `json:"code"`
}

// Problem is the body of every validation failure response
type Problem struct {
	Type       string      `json:"type"`
	Title      string      `json:"title"`
	Detail     string      `json:"detail"`
	Violations []Violation `json:"violations"`
}

// NewProblem builds the response body for given violations
func NewProblem(violations []Violation) Problem {
	details := make([]string, 0, len(violations))
	for _, v := range violations {
		if v.PropertyPath == "" {
			details = append(details, v.Title)
			continue
		}
		details = append(details, v.PropertyPath+": "+v.Title)
	}
	if violations == nil {
		violations = []Violation{}
	}
	return Problem{
		Type:       "validation_failed",
		Title:      "Validation Failed",
		Detail:     strings.Join(details, "\n"),
		Violations: violations,
	}
}

// InvalidBody is the problem returned when the request body cannot be decoded
func InvalidBody() Problem {
	return Problem{
		Type:       "invalid_body",
		Title:      "Invalid body",
		Detail:     "Invalid body",
		Violations: []Violation{},
	}
}

// Validator validates structs tagged with `validate` and reports violations
// using the json name of each field.
type Validator struct {
	v *validator.Validate
}

// New creates a Validator
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct validates s. A nil slice means s is valid.
func (val *Validator) Struct(s interface{}) ([]Violation, error) {
	err := val.v.Struct(s)
	if err == nil {
		return nil, nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return nil, err
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}

	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, Violation{
			PropertyPath: fe.Field(),
			Title:        message(fe),
			Code:         code(fe.Tag()),
		})
	}
	return violations, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This value should not be blank."
	case "max":
		return fmt.Sprintf("This value is too long. It should have %s characters or less.", fe.Param())
	case "min":
		return fmt.Sprintf("This value is too short. It should have %s characters or more.", fe.Param())
	case "base64":
		return "This value is not valid base64."
	default:
		return "This value is not valid."
	}
}

func code(tag string) string {
	switch tag {
	case "required":
		return codeBlank
	case "max":
		return codeTooLong
	case "min":
		return "too_short"
	case "base64":
		return codeInvalidValue
	default:
		return tag
	}
}
