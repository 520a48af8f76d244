package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

const (
	ErrRequired       = "is required"
	ErrProductId      = "must be a lowercase product reference of letters, digits, '-' or '_'"
	ErrDefaultInvalid = "is invalid"
)

var productIdRgx = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("product_id", validateProductId)

	return validator
}

func validateProductId(fl validator.FieldLevel) bool {
	return productIdRgx.MatchString(fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "product_id":
		return ErrProductId
	case "min":
		return minMessage(err)
	case "max":
		return maxMessage(err)
	default:
		return ErrDefaultInvalid
	}
}

func minMessage(err validator.FieldError) string {
	switch err.Kind().String() {
	case "slice", "array":
		return fmt.Sprintf("must contain at least %s items", err.Param())
	case "string":
		return fmt.Sprintf("must be at least %s characters long", err.Param())
	default:
		return fmt.Sprintf("must be at least %s", err.Param())
	}
}

func maxMessage(err validator.FieldError) string {
	switch err.Kind().String() {
	case "slice", "array":
		return fmt.Sprintf("must contain at most %s items", err.Param())
	case "string":
		return fmt.Sprintf("must be at most %s characters long", err.Param())
	default:
		return fmt.Sprintf("must be at most %s", err.Param())
	}
}
