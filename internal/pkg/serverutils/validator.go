package serverutils

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks a dto's `validate` tags and converts failures into a
// field-keyed AppError the error middleware can render as-is.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return NewValidationError("Invalid request payload", nil)
	}

	fieldErrors := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fieldErrors[fe.Field()] = fmt.Sprintf("failed on the '%s' rule", fe.Tag())
	}

	return NewValidationError("Request validation failed", fieldErrors)
}
