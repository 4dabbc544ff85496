package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their wire name so messages match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// FieldError is the first rule violation found on an input struct.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

// Struct validates s against its `validate` tags. Violations are returned as a
// *FieldError naming the first offending field in declaration order.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if errors.As(err, &ves) && len(ves) > 0 {
		fe := ves[0]
		return &FieldError{Field: fe.Field(), Message: message(fe)}
	}
	return err
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", field)
	case "min":
		if isString {
			return fmt.Sprintf("%q length must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be greater than or equal to %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%q length must be less than or equal to %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%q must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}
