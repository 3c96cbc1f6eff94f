package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure for the in-band reporting convention the
// tool surface uses. Callers decide how to present each kind; none of them
// are transport faults.
type ErrorKind string

const (
	// KindPoolUnavailable marks a startup/config failure that is captured
	// once and replayed on every call, never re-attempted.
	KindPoolUnavailable ErrorKind = "pool_unavailable"
	// KindUnauthenticated means no verified identity was presented.
	KindUnauthenticated ErrorKind = "unauthenticated"
	// KindIdentityUnknown means the caller must supply a real user name.
	KindIdentityUnknown ErrorKind = "identity_unknown"
	// KindValidation marks malformed input, recoverable by the caller.
	KindValidation ErrorKind = "validation"
	// KindNotFound means the row is absent or owned by someone else. The two
	// cases are deliberately indistinguishable.
	KindNotFound ErrorKind = "not_found"
	// KindStore covers any other database failure.
	KindStore ErrorKind = "store"
)

// Error is the single error type crossing the service boundary. Message is
// the caller-facing text; Err keeps the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func WrapError(kind ErrorKind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

func WrapErrorf(kind ErrorKind, err error, format string, args ...any) *Error {
	wrapped := fmt.Errorf(format+": %w", append(args, err)...)
	return &Error{Kind: kind, Message: wrapped.Error(), Err: wrapped}
}

// KindOf extracts the classification from err, defaulting to KindStore so an
// unclassified database failure is still reported, message included.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}
