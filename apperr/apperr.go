// Package apperr defines the error kinds returned by the service layer.
// Handlers translate kinds to HTTP status codes; services stay transport-free.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a service-layer failure.
type Kind int

const (
	// Unexpected is any failure the service cannot classify. The cause is
	// logged; callers see an opaque message.
	Unexpected Kind = iota
	// Unauthenticated means no valid principal was supplied.
	Unauthenticated
	// Forbidden means the principal lacks the role or ownership required.
	Forbidden
	// InvalidArgument means malformed or out-of-range input.
	InvalidArgument
	// NotFound means a referenced entity id does not resolve.
	NotFound
	// Conflict means the operation would violate a state invariant.
	Conflict
	// StorageFailure means an artifact read/write failed.
	StorageFailure
)

// String returns the stable name of the kind.
func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case InvalidArgument:
		return "invalid_argument"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	case StorageFailure:
		return "storage_failure"
	default:
		return "unexpected"
	}
}

// Error carries a kind, a user-facing message and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates an error of the given kind with a user-facing message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind wrapping a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, or Unexpected if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

// MessageOf extracts the user-facing message from err. Unexpected errors get
// an opaque message so internals never leak to clients.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Unexpected {
		return e.Message
	}
	return "Internal server error"
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
