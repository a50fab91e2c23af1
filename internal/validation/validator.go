// Package validation provides HTTP request validation utilities using the validator/v10 library.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	domainerrors "github.com/Amir-Wake/Ebookd/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain.
func New() *Validator {
	v := validator.New()

	// Report fields by their JSON names, not Go struct names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		fieldErrors[fe.Field()] = describeFailure(fe)
	}
	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func describeFailure(fe validator.FieldError) string {
	switch tag := fe.Tag(); tag {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gte", "lte", "gt", "lt":
		return comparisonMessage(tag, fe.Param())
	case "dive":
		return "contains an invalid element"
	default:
		return "is invalid"
	}
}

func comparisonMessage(tag, param string) string {
	bounds := map[string]string{
		"gte": "must be greater than or equal to ",
		"lte": "must be less than or equal to ",
		"gt":  "must be greater than ",
		"lt":  "must be less than ",
	}
	return bounds[tag] + param
}
