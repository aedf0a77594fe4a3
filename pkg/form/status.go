package form

import (
	"fmt"
	"strings"
)

// Status is the validation status of a control.
//
// The status follows this state machine:
//
//	VALID ⇄ INVALID ⇄ PENDING ──► VALID | INVALID
//
// DISABLED is orthogonal: while a control is disabled, Status reports
// StatusDisabled regardless of the cached VALID/INVALID/PENDING value.
type Status int

const (
	// StatusValid means every validator passed.
	StatusValid Status = iota
	// StatusInvalid means a validator reported errors on the control or a child.
	StatusInvalid
	// StatusPending means asynchronous validation is in flight on the control or a child.
	StatusPending
	// StatusDisabled means the control is excluded from value and validation.
	StatusDisabled
)

// String returns the conventional upper-case status name.
func (s Status) String() string {
	switch s {
	case StatusValid:
		return "VALID"
	case StatusInvalid:
		return "INVALID"
	case StatusPending:
		return "PENDING"
	case StatusDisabled:
		return "DISABLED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// UpdateOn controls when view changes recorded with [Field.Input] are
// committed to the model and trigger validation.
type UpdateOn int

const (
	// UpdateOnDefault inherits the parent's setting, or UpdateOnChange at the root.
	UpdateOnDefault UpdateOn = iota
	// UpdateOnChange commits every input immediately.
	UpdateOnChange
	// UpdateOnBlur commits input when the field is blurred.
	UpdateOnBlur
	// UpdateOnSubmit commits input when SyncPending is called.
	UpdateOnSubmit
)

func (u UpdateOn) String() string {
	switch u {
	case UpdateOnDefault:
		return "default"
	case UpdateOnChange:
		return "change"
	case UpdateOnBlur:
		return "blur"
	case UpdateOnSubmit:
		return "submit"
	default:
		return fmt.Sprintf("UpdateOn(%d)", int(u))
	}
}

// ParseUpdateOn converts "change", "blur" or "submit" (case-insensitive) to
// an UpdateOn. The empty string yields UpdateOnDefault.
func ParseUpdateOn(s string) (UpdateOn, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return UpdateOnDefault, nil
	case "change":
		return UpdateOnChange, nil
	case "blur":
		return UpdateOnBlur, nil
	case "submit":
		return UpdateOnSubmit, nil
	default:
		return UpdateOnDefault, fmt.Errorf("form: unknown updateOn %q", s)
	}
}
