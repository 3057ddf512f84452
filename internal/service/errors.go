package service

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaNotFound is returned when a dataset has no category schema
	ErrSchemaNotFound = errors.New("category schema not found")

	// ErrMarkerNotFound is returned when a marker does not exist
	ErrMarkerNotFound = errors.New("marker not found")

	// ErrSuperseded is returned when a newer request of the same session
	// cancelled a raster generation
	ErrSuperseded = errors.New("cancelled by a newer request")
)

// ValidationError reports invalid input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
