package catalog

import (
	"errors"
	"fmt"
)

const MaxNameLength = 50

// AllowedExtensions are the photo formats accepted at registration.
var AllowedExtensions = []string{"jpg", "jpeg", "png"}

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrBlobCleanup means the record is gone but some of its blobs could not be removed.
	ErrBlobCleanup = errors.New("product deleted but blob cleanup failed")
)

// ValidationError describes one rejected registration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

func invalid(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
