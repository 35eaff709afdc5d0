package store

import "errors"

var (
	// ErrConflict means a second task would be in progress.
	ErrConflict = errors.New("conflict")
	// ErrUnauthorized covers a missing or rejected credential and ownership mismatches.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	// ErrInvalid is a request the store rejected as malformed.
	ErrInvalid = errors.New("invalid request")
	// ErrTransient is a network or availability failure.
	ErrTransient = errors.New("temporarily unavailable")
)

// Error describes a failed store operation. Kind is one of the sentinels above.
type Error struct {
	Op      string
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Op + ": " + e.Kind.Error()
	}
	return e.Op + ": " + e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NewError builds an *Error.
func NewError(op string, kind error, message string) error {
	return &Error{Op: op, Kind: kind, Message: message}
}
