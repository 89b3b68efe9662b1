// Package validation holds the shared struct validator used for config and
// request payloads.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// Error aggregates every failed rule of a single Struct call.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Struct validates s and returns nil or an *Error.
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := &Error{Fields: make([]FieldError, len(verrs))}
	for i, fe := range verrs {
		out.Fields[i] = FieldError{
			Field:   fe.Namespace(),
			Tag:     fe.Tag(),
			Message: message(fe),
		}
	}
	return out
}

func message(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required", "required_if":
		return field + " is required"
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}
