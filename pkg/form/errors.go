package form

import (
	"errors"
	"fmt"
	"strconv"
)

// ValidationErrors maps an error code to its details. A nil map means the
// control has no errors; validators never produce an empty non-nil map.
type ValidationErrors map[string]any

// AsyncFailedKey is the error code recorded when an asynchronous validator
// fails or panics instead of returning an error map.
const AsyncFailedKey = "asyncFailed"

// ErrShapeMismatch is matched by every error returned when a value does not
// fit the shape of the control it is applied to.
var ErrShapeMismatch = errors.New("form: value does not match control shape")

// ShapeError describes where and why a value did not fit.
type ShapeError struct {
	// Path is the dotted path, relative to the control the value was applied
	// to, of the control that rejected the value. Empty for the control itself.
	Path string
	// Reason describes the mismatch.
	Reason string
}

func (e *ShapeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%v: %s", ErrShapeMismatch, e.Reason)
	}
	return fmt.Sprintf("%v at %q: %s", ErrShapeMismatch, e.Path, e.Reason)
}

func (e *ShapeError) Unwrap() error {
	return ErrShapeMismatch
}

func shapeErrorf(path, format string, args ...any) error {
	return &ShapeError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

func joinPath(prefix string, segment any) string {
	var s string
	switch seg := segment.(type) {
	case int:
		s = strconv.Itoa(seg)
	case string:
		s = seg
	default:
		s = fmt.Sprint(seg)
	}
	if prefix == "" {
		return s
	}
	return prefix + "." + s
}
