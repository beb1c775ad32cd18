package vgrouter

import (
	"errors"
	"fmt"
)

// Routing errors.  Errors returned by this package wrap one of these and can be
// tested with errors.Is.
var (
	ErrNoMatch            = errors.New("no matching route")
	ErrUnknownRouteName   = errors.New("unknown route name")
	ErrDuplicateRouteName = errors.New("duplicate route name")
	ErrTooManyRedirects   = errors.New("too many redirects")
	ErrAborted            = errors.New("navigation aborted")
	ErrGuardFailure       = errors.New("navigation guard failed")
	ErrInvalidPattern     = errors.New("invalid route pattern")
	ErrMissingParam       = errors.New("missing param")
	ErrInvalidLocation    = errors.New("invalid location")
)

// Abort reasons produced by the router itself.
const (
	AbortSuperseded = "superseded"
	AbortTimeout    = "timeout"
	AbortCancelled  = "cancelled"
	AbortClosed     = "closed"
)

// NavigationError reports a navigation that could not be resolved.
// Location is set for path targets and Name for named targets.
type NavigationError struct {
	Location string
	Name     string
	Err      error
}

func (e *NavigationError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("navigate to route %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("navigate to %q: %v", e.Location, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// AbortError is returned when a navigation is aborted by a guard, by a newer
// navigation (AbortSuperseded) or by its timeout (AbortTimeout).
type AbortError struct {
	Reason string
}

func (e *AbortError) Error() string { return "navigation aborted: " + e.Reason }

// Is makes errors.Is(err, ErrAborted) true.
func (e *AbortError) Is(target error) bool { return target == ErrAborted }

// GuardError wraps an error returned (or a panic raised) by a guard.
// It is treated as an abort: errors.Is matches both ErrAborted and ErrGuardFailure.
type GuardError struct {
	Cause error
}

func (e *GuardError) Error() string { return "navigation guard failed: " + e.Cause.Error() }

func (e *GuardError) Unwrap() []error { return []error{ErrAborted, ErrGuardFailure, e.Cause} }

// AbortReason returns the reason of an aborted navigation, or "" if err is not an abort.
func AbortReason(err error) string {
	var ae *AbortError
	if errors.As(err, &ae) {
		return ae.Reason
	}
	var ge *GuardError
	if errors.As(err, &ge) {
		return ge.Error()
	}
	return ""
}

// IsSuperseded reports whether err means a newer navigation replaced this one.
func IsSuperseded(err error) bool {
	var ae *AbortError
	return errors.As(err, &ae) && ae.Reason == AbortSuperseded
}
