package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound      = errors.New("resource not found")
	ErrDatasetAbsent = fmt.Errorf("%w: dataset", ErrNotFound)

	// Input errors
	ErrUnreadableSpreadsheet = errors.New("spreadsheet could not be read")
	ErrInvalidFilter         = errors.New("invalid filter")
)

// NewInvalidFilterError reports a filter parameter that could not be understood
func NewInvalidFilterError(param, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidFilter, param, reason)
}

// IsDatasetAbsent reports whether err means there is no stored dataset
func IsDatasetAbsent(err error) bool {
	return errors.Is(err, ErrDatasetAbsent)
}
