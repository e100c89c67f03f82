package schemas

import (
	"errors"
	"fmt"
)

// -- Error Classification --

// ErrorClass is a coarse, machine-readable failure classification surfaced in
// every failed ActionResult. Operators use it to distinguish "misconfigured"
// from "UI changed" from "blocked by policy".
type ErrorClass string

const (
	// ClassNotConnected means the terminal window is unavailable. Fatal to the
	// whole session, not just one action.
	ClassNotConnected ErrorClass = "NotConnected"
	// ClassElementNotFound means the resolution chain was exhausted.
	ClassElementNotFound ErrorClass = "ElementNotFound"
	// ClassTimeout means a bounded wait elapsed without an otherwise-classified cause.
	ClassTimeout ErrorClass = "Timeout"
	// ClassSafetyViolation means the safety gate rejected the action before
	// any input was synthesized.
	ClassSafetyViolation ErrorClass = "SafetyViolation"
	// ClassValidationError means the parameters were rejected before any side effect.
	ClassValidationError ErrorClass = "ValidationError"
	// ClassRecognitionError means the OCR or image backend failed. Treated as a
	// resolution-attempt failure, never fatal.
	ClassRecognitionError ErrorClass = "RecognitionError"
	// ClassNoConfirmation means the expected post-condition element never appeared.
	ClassNoConfirmation ErrorClass = "NoConfirmation"
	// ClassActionFailed is the catch-all for execution failures with no
	// sharper classification.
	ClassActionFailed ErrorClass = "ActionFailed"
	// ClassBusy means another action was already in flight.
	ClassBusy ErrorClass = "Busy"
)

// AutomationError is the classified error type used throughout the core. It
// wraps an underlying cause and records the phase the failure occurred in.
type AutomationError struct {
	Class ErrorClass
	Phase Phase
	Err   error
}

func (e *AutomationError) Error() string {
	if e.Err == nil {
		return string(e.Class)
	}
	return fmt.Sprintf("%s: %v", e.Class, e.Err)
}

func (e *AutomationError) Unwrap() error { return e.Err }

// Is reports whether target is an AutomationError of the same class, so
// callers can use errors.Is with sentinel-style values.
func (e *AutomationError) Is(target error) bool {
	var ae *AutomationError
	if errors.As(target, &ae) {
		return ae.Class == e.Class
	}
	return false
}

// NewError builds a classified error wrapping cause.
func NewError(class ErrorClass, phase Phase, cause error) *AutomationError {
	return &AutomationError{Class: class, Phase: phase, Err: cause}
}

// Errorf builds a classified error from a format string.
func Errorf(class ErrorClass, phase Phase, format string, args ...any) *AutomationError {
	return &AutomationError{Class: class, Phase: phase, Err: fmt.Errorf(format, args...)}
}

// ClassOf extracts the classification from err, defaulting to ClassActionFailed
// for unclassified failures.
func ClassOf(err error) ErrorClass {
	var ae *AutomationError
	if errors.As(err, &ae) {
		return ae.Class
	}
	return ClassActionFailed
}

// PhaseOf extracts the phase recorded on err, if any.
func PhaseOf(err error) Phase {
	var ae *AutomationError
	if errors.As(err, &ae) {
		return ae.Phase
	}
	return ""
}
