package heatmap

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when there are no markers to build a raster from
var ErrEmptyInput = errors.New("no data to visualize")

// InvalidRequestError reports a raster request rejected before computation
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid raster request: %s %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...interface{}) error {
	return &InvalidRequestError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidRequest reports whether err is (or wraps) an InvalidRequestError
func IsInvalidRequest(err error) bool {
	var target *InvalidRequestError
	return errors.As(err, &target)
}
