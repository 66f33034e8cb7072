// Package validate wraps go-playground/validator with json field naming.
package validate

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hpungsan/pantry/internal/errors"
)

var v *validator.Validate

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Struct validates s and maps failures to an INVALID_REQUEST error
// carrying one message per field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	fields := Fields(err)
	if len(fields) == 0 {
		return errors.NewInternal(err)
	}
	return errors.NewInvalidFields(fields)
}

// Fields converts validator.ValidationErrors into field name -> message.
func Fields(err error) map[string]string {
	out := make(map[string]string)
	var ve validator.ValidationErrors
	if !stderrors.As(err, &ve) {
		return out
	}
	for _, e := range ve {
		out[e.Field()] = message(e)
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Minimum is %s", e.Param())
	case "max":
		return fmt.Sprintf("Maximum is %s", e.Param())
	case "gte":
		return fmt.Sprintf("Must be greater than or equal to %s", e.Param())
	case "gt":
		return fmt.Sprintf("Must be greater than %s", e.Param())
	case "lte":
		return fmt.Sprintf("Must be less than or equal to %s", e.Param())
	case "numeric":
		return "Must be a numeric value"
	case "url":
		return "Must be a valid URL"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", e.Param())
	case "required_if", "required_without":
		return "This field is required"
	case "excluded_with":
		return fmt.Sprintf("Must not be set together with %s", e.Param())
	default:
		return fmt.Sprintf("Validation failed on '%s'", e.Tag())
	}
}
