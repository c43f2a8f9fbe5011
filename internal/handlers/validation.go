package handlers

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseValidationErrors converts validator errors to user-friendly format
func ParseValidationErrors(err error) []ValidationError {
	var result []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			result = append(result, ValidationError{
				Field:   fieldError.Field(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return result
}

func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		if isNumeric(fe.Kind()) {
			return fe.Field() + " must be at least " + fe.Param()
		}
		if fe.Kind() == reflect.Slice {
			return fe.Field() + " must contain at least " + fe.Param() + " items"
		}
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		if isNumeric(fe.Kind()) {
			return fe.Field() + " must not exceed " + fe.Param()
		}
		if fe.Kind() == reflect.Slice {
			return fe.Field() + " must not contain more than " + fe.Param() + " items"
		}
		return fe.Field() + " must not exceed " + fe.Param() + " characters"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
