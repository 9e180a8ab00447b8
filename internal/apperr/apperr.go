// Package apperr provides coded domain errors shared by the raid packages.
package apperr

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknown Code = "UNKNOWN"

	// Player-facing, recoverable.
	CodeInsufficientTickets Code = "INSUFFICIENT_TICKETS"
	CodeNoClearRecord       Code = "NO_CLEAR_RECORD"
	CodeTierLocked          Code = "TIER_LOCKED"
	CodeRewardUnavailable   Code = "REWARD_UNAVAILABLE"

	// Caller sequencing defects.
	CodeInvalidTierTransition Code = "INVALID_TIER_TRANSITION"

	CodeUnknownTier   Code = "UNKNOWN_TIER"
	CodeInvalidConfig Code = "INVALID_CONFIG"
	CodeBadRequest    Code = "BAD_REQUEST"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WithMetadata(code Code, message string, metadata map[string]string) *Error {
	return &Error{Code: code, Message: message, Metadata: metadata}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the code from err, or CodeUnknown.
func CodeOf(err error) Code {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return CodeUnknown
		}
		err = u.Unwrap()
	}
	return CodeUnknown
}

// Recoverable reports whether the error is something a player can act on
// rather than a caller defect.
func (c Code) Recoverable() bool {
	switch c {
	case CodeInsufficientTickets, CodeNoClearRecord, CodeTierLocked, CodeRewardUnavailable:
		return true
	default:
		return false
	}
}

// HTTPStatus maps a code onto the status the JSON API responds with.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInsufficientTickets, CodeNoClearRecord, CodeInvalidTierTransition, CodeRewardUnavailable:
		return http.StatusConflict
	case CodeTierLocked:
		return http.StatusForbidden
	case CodeUnknownTier, CodeInvalidConfig, CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
