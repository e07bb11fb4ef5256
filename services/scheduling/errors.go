package scheduling

import (
	"errors"
	"fmt"

	"hms/models"
)

// ErrorKind classifies a domain failure. The value is what clients see as errorKind.
type ErrorKind string

const (
	KindPastTime                ErrorKind = "PastTime"
	KindOutsideAvailability     ErrorKind = "OutsideAvailability"
	KindSlotUnavailable         ErrorKind = "SlotUnavailable"
	KindInvalidTransition       ErrorKind = "InvalidTransition"
	KindNotCancellable          ErrorKind = "NotCancellable"
	KindNotReschedulable        ErrorKind = "NotReschedulable"
	KindRescheduleLimitExceeded ErrorKind = "RescheduleLimitExceeded"
	KindNotFound                ErrorKind = "NotFound"
	KindInvalidRequest          ErrorKind = "InvalidRequest"
	KindForbidden               ErrorKind = "Forbidden"
	KindConcurrentUpdate        ErrorKind = "ConcurrentUpdate"
)

// Error is the single domain error type returned by the scheduling core.
type Error struct {
	Kind    ErrorKind
	Message string

	// Set for InvalidTransition only.
	Current   models.AppointmentStatus
	Requested models.AppointmentStatus
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches on Kind so callers can use errors.Is(err, scheduling.ErrSlotUnavailable).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrPastTime                = &Error{Kind: KindPastTime, Message: "requested time is in the past"}
	ErrOutsideAvailability     = &Error{Kind: KindOutsideAvailability, Message: "requested time is outside provider availability"}
	ErrSlotUnavailable         = &Error{Kind: KindSlotUnavailable, Message: "requested slot is already booked"}
	ErrInvalidTransition       = &Error{Kind: KindInvalidTransition, Message: "status transition not allowed"}
	ErrNotCancellable          = &Error{Kind: KindNotCancellable, Message: "appointment cannot be cancelled"}
	ErrNotReschedulable        = &Error{Kind: KindNotReschedulable, Message: "appointment cannot be rescheduled"}
	ErrRescheduleLimitExceeded = &Error{Kind: KindRescheduleLimitExceeded, Message: "reschedule limit reached"}
	ErrNotFound                = &Error{Kind: KindNotFound, Message: "not found"}
	ErrInvalidRequest          = &Error{Kind: KindInvalidRequest, Message: "invalid request"}
	ErrForbidden               = &Error{Kind: KindForbidden, Message: "not permitted"}
	ErrConcurrentUpdate        = &Error{Kind: KindConcurrentUpdate, Message: "appointment was modified concurrently"}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalidTransition(current, requested models.AppointmentStatus) *Error {
	return &Error{
		Kind:      KindInvalidTransition,
		Message:   fmt.Sprintf("cannot move appointment from %s to %s", current, requested),
		Current:   current,
		Requested: requested,
	}
}

// KindOf returns the domain kind of err, or "" for infrastructure errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
