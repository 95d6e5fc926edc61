// Package validation runs struct-tag validation on usecase inputs and
// converts failures into domain.ErrValidation.
package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/simaogato/hearthledger-backend/internal/domain"
)

var validate = validator.New()

// Struct validates s against its `validate` tags.
// The returned error wraps domain.ErrValidation and names each failing field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	fields := ProcessValidationErrors(validationErrors)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+fields[name])
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(parts, ", "))
}

// ProcessValidationErrors maps each failing field to the tag it failed
func ProcessValidationErrors(validationErrors validator.ValidationErrors) map[string]string {
	errorResponse := make(map[string]string)
	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}
	return errorResponse
}
