package bridge

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a bridge error condition.
type ErrorCode string

const (
	// ErrCodeTargetMismatch means a poll named a place or context that is not
	// the current target. Callers retry against the advertised target.
	ErrCodeTargetMismatch ErrorCode = "TARGET_MISMATCH"
	// ErrCodeContextInactive means a Server/Client context was selected while
	// it is not active on the target place.
	ErrCodeContextInactive ErrorCode = "CONTEXT_INACTIVE"
	ErrCodeInvalidInput    ErrorCode = "INVALID_INPUT"
)

// Error is a structured bridge error.
type Error struct {
	Code    ErrorCode      `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithDetail attaches a detail value and returns e.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newError(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// MismatchError is returned by Drain when the poll is not for the current
// target. It advertises the target the caller should retry with.
type MismatchError struct {
	TargetContext ExecutionContext
	TargetPlaceID *int64
}

func (e *MismatchError) Error() string {
	if e.TargetPlaceID == nil {
		return fmt.Sprintf("%s: target is %s with no place", ErrCodeTargetMismatch, e.TargetContext)
	}
	return fmt.Sprintf("%s: target is %s on place %d", ErrCodeTargetMismatch, e.TargetContext, *e.TargetPlaceID)
}

// GetCode extracts the error code from err, or "" when err is not a bridge
// error.
func GetCode(err error) ErrorCode {
	var mismatch *MismatchError
	if errors.As(err, &mismatch) {
		return ErrCodeTargetMismatch
	}
	var bErr *Error
	if errors.As(err, &bErr) {
		return bErr.Code
	}
	return ""
}

// Is reports whether err carries code.
func Is(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}
