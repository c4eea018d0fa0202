package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"shopfront/internal/validate"
)

var checker = newChecker()

func newChecker() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// same pattern the auth forms use
	_ = v.RegisterValidation("emailpattern", func(fl validator.FieldLevel) bool {
		_, ok := validate.Email(fl.Field().String())
		return ok
	})
	return v
}

// check validates s and converts failures into a ValidationError.
func check(s any) error {
	err := checker.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := &ValidationError{Fields: map[string]string{}}
	for _, fe := range ves {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email", "emailpattern":
		return "must be a valid email address"
	case "max":
		return "is too long"
	case "gte", "min":
		return "must be at least " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
