// Package errors provides structured reporting for faults that happen away
// from a caller, such as asynchronous validators that fail or panic after the
// pass that started them has returned.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindAsyncValidator indicates an asynchronous validator returned an error.
	KindAsyncValidator
	// KindDispatch indicates an async result could not be handed back to the tree.
	KindDispatch
)

func (k ErrorKind) String() string {
	switch k {
	case KindAsyncValidator:
		return "async-validator"
	case KindDispatch:
		return "dispatch"
	default:
		return "unknown"
	}
}

// FormError represents a structured error raised while maintaining a form tree.
type FormError struct {
	// Op is the operation that failed (e.g., "form.asyncValidator").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Path is the dotted path of the control involved, if any.
	Path string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *FormError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s [%s] path=%s: %v", e.Op, e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *FormError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "form.asyncTask").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the form packages.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *FormError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
