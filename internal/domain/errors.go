package domain

import "errors"

// Error classes shared by usecases and adapters.
// Usecases wrap these with context; adapters map them with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrRecalculationFailed = errors.New("checkpoint recalculation failed")
)
