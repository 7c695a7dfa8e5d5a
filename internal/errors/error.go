// Package errors provides custom error types for product-related operations.
package errors

import (
	"errors"
	"strings"
)

var ErrInvalidProductID = errors.New("invalid product id")

var ErrProductNotFound = errors.New("product not found")

var ErrAccessDenied = errors.New("access denied")

// ValidationError reports a payload that failed schema validation.
// Fields maps the JSON field name to the rule it broke.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError whose message lists the
// failures in the given order.
func NewValidationError(order []string, fields map[string]string) *ValidationError {
	parts := make([]string, 0, len(order))
	for _, name := range order {
		parts = append(parts, name+" "+fields[name])
	}
	return &ValidationError{
		Message: strings.Join(parts, "; "),
		Fields:  fields,
	}
}
