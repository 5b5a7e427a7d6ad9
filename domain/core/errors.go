package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrDatasetNotFound = fmt.Errorf("%w: dataset", ErrNotFound)
	ErrJobNotFound     = fmt.Errorf("%w: job", ErrNotFound)
	ErrReportNotFound  = fmt.Errorf("%w: report", ErrNotFound)

	// Input errors
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrUnparseableInput  = errors.New("unparseable dataset content")
	ErrOversizePayload   = errors.New("payload exceeds size limit")

	// Profiling errors
	ErrEmptyFrame       = errors.New("frame has no rows")
	ErrColumnLengthSkew = errors.New("columns have unequal row counts")
	ErrInsufficientData = errors.New("insufficient data for analysis")
)

// Error constructors with context
func NewNotFoundError(resource string, id string) error {
	return fmt.Errorf("%w: %s with id %s", ErrNotFound, resource, id)
}

func NewValidationError(field string, reason string) error {
	return fmt.Errorf("validation failed for %s: %s", field, reason)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsInputError(err error) bool {
	return errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrUnparseableInput) ||
		errors.Is(err, ErrOversizePayload)
}
