// Package validate turns struct-tag validation failures into field messages.
package validate

import (
	"errors"

	"github.com/amichai1/task-manager-app/domain/apperr"
	"github.com/go-playground/validator/v10"
)

// Messages maps "Field.tag" to the message shown to clients. A "Field" key
// is used as the fallback for any tag on that field.
type Messages map[string]string

// Struct validates s and returns a ValidationError listing one message per
// failed field, or nil when s is valid.
func Struct(v *validator.Validate, s any, msgs Messages) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Internal(err)
	}

	details := make([]string, 0, len(fieldErrs))
	seen := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		details = append(details, message(fe, msgs))
	}
	return apperr.Validation(details[0], details...)
}

func message(fe validator.FieldError, msgs Messages) string {
	if m, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := msgs[fe.Field()]; ok {
		return m
	}
	return fe.Field() + " is invalid"
}
